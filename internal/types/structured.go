package types

// StructuredData is the resume content extracted by analysis and edited by the
// client form. Keys are camelCase on the wire.
type StructuredData struct {
	PersonalInfo PersonalInfo `json:"personalInfo" bson:"personalInfo" yaml:"personalInfo"`
	Summary      string       `json:"summary,omitempty" bson:"summary,omitempty" yaml:"summary,omitempty"`
	Experience   []Experience `json:"experience" bson:"experience" yaml:"experience"`
	Education    []Education  `json:"education" bson:"education" yaml:"education"`
	Skills       []string     `json:"skills" bson:"skills" yaml:"skills"`
	Projects     []Project    `json:"projects,omitempty" bson:"projects,omitempty" yaml:"projects,omitempty"`
	Languages    []string     `json:"languages,omitempty" bson:"languages,omitempty" yaml:"languages,omitempty"`
}

// PersonalInfo holds contact details.
type PersonalInfo struct {
	FullName string `json:"fullName" bson:"fullName" yaml:"fullName"`
	Email    string `json:"email" bson:"email" yaml:"email"`
	Phone    string `json:"phone,omitempty" bson:"phone,omitempty" yaml:"phone,omitempty"`
	Location string `json:"location,omitempty" bson:"location,omitempty" yaml:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty" bson:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	Website  string `json:"website,omitempty" bson:"website,omitempty" yaml:"website,omitempty"`
}

// Experience is one employment entry.
type Experience struct {
	Company     string   `json:"company" bson:"company" yaml:"company"`
	Position    string   `json:"position" bson:"position" yaml:"position"`
	StartDate   string   `json:"startDate,omitempty" bson:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty" bson:"endDate,omitempty" yaml:"endDate,omitempty"`
	IsCurrent   bool     `json:"isCurrent,omitempty" bson:"isCurrent,omitempty" yaml:"isCurrent,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	Highlights  []string `json:"highlights" bson:"highlights" yaml:"highlights"`
}

// Education is one education entry.
type Education struct {
	Institution  string `json:"institution" bson:"institution" yaml:"institution"`
	Degree       string `json:"degree,omitempty" bson:"degree,omitempty" yaml:"degree,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty" bson:"fieldOfStudy,omitempty" yaml:"fieldOfStudy,omitempty"`
	StartDate    string `json:"startDate,omitempty" bson:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty" bson:"endDate,omitempty" yaml:"endDate,omitempty"`
	Description  string `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
}

// Project is a portfolio entry.
type Project struct {
	Name         string   `json:"name" bson:"name" yaml:"name"`
	Description  string   `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	URL          string   `json:"url,omitempty" bson:"url,omitempty" yaml:"url,omitempty"`
	Technologies []string `json:"technologies,omitempty" bson:"technologies,omitempty" yaml:"technologies,omitempty"`
}
