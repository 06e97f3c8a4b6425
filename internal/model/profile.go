package model

// PublicProfile is the `public_profiles` row of a user.  It is
// created lazily with the identity fields of the owner the first
// time it is read.
type PublicProfile struct {
	Firstname       string `json:"firstname"`
	Lastname        string `json:"lastname"`
	Regno           string `json:"regno"`
	ProfilePhotoURL string `json:"profilePhotoUrl,omitempty"`
	Branch          string `json:"branch,omitempty"`
	JoiningYear     string `json:"joiningYear,omitempty"`
}

// ProgrammingProfile holds competitive programming handles of a user
// (`programming_profiles`, one row per regno).
type ProgrammingProfile struct {
	Regno            string `json:"-"`
	PreferedLanguage string `json:"preferedLanguage,omitempty"`
	CodeChefURL      string `json:"codeChefUrl,omitempty"`
	HackerearthURL   string `json:"hackerearthUrl,omitempty"`
	TopCoderURL      string `json:"topCoderUrl,omitempty"`
	GitHubURL        string `json:"gitHubUrl,omitempty"`
	ProjectEulerKey  string `json:"projectEulerKey,omitempty"`
}

// Project is a `projects` row.  A user has many projects; the
// project name is unique per owner.  Start and end times use the
// "Month, Year" format; EndTime is nil for ongoing projects.
type Project struct {
	ID               string  `json:"project_id"`
	Regno            string  `json:"-"`
	ProjectName      string  `json:"projectName"`
	BriefDescription string  `json:"briefDescription"`
	GitHubURL        string  `json:"gitHubUrl"`
	StartTime        string  `json:"startTime"`
	EndTime          *string `json:"endTime"`
}

// Tech is a technology a user works with (`techs`).
type Tech struct {
	ID           string `json:"tech_id"`
	Regno        string `json:"-"`
	TechName     string `json:"techName"`
	LearningYear string `json:"learningYear"`
	StillUseIt   bool   `json:"stillUseIt"`
	Level        int    `json:"level"`
	SourceName   string `json:"sourceName"`
	SourceURL    string `json:"sourceUrl"`
}
