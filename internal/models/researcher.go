package models

type Researcher struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r Researcher) IsZero() bool {
	return r.Name == "" && r.Email == ""
}
