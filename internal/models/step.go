package models

// StepID names one page of the questionnaire.
type StepID string

const (
	StepLogin          StepID = "login"
	StepSampleInfo     StepID = "sample_info"
	StepReach          StepID = "reach"
	StepSalience       StepID = "salience"
	StepDiscursiveness StepID = "discursiveness"
	StepValues         StepID = "values"
	StepSummary        StepID = "summary"
	StepThankYou       StepID = "thank_you"
)
