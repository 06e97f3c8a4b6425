package model

// Assignment is one column update of a partial write.
type Assignment struct {
	Column string
	Value  any
}

// Partial updates share one policy: a nil field and an empty string both mean
// "leave unchanged". A stored value therefore cannot be cleared through a patch.

func setString(out []Assignment, column string, v *string) []Assignment {
	if v == nil || *v == "" {
		return out
	}
	return append(out, Assignment{Column: column, Value: *v})
}

// PublicProfilePatch lists the public profile fields a user may change.
type PublicProfilePatch struct {
	ProfilePhotoURL *string `json:"profilePhotoUrl"`
	Branch          *string `json:"branch"`
	JoiningYear     *string `json:"joiningYear"`
}

// Assignments returns the column updates requested by p.
func (p PublicProfilePatch) Assignments() []Assignment {
	var out []Assignment
	out = setString(out, "profile_photo_url", p.ProfilePhotoURL)
	out = setString(out, "branch", p.Branch)
	out = setString(out, "joining_year", p.JoiningYear)
	return out
}

// ProgrammingProfilePatch lists the programming profile fields a user may change.
type ProgrammingProfilePatch struct {
	PreferedLanguage *string `json:"preferedLanguage"`
	CodeChefURL      *string `json:"codeChefUrl"`
	HackerearthURL   *string `json:"hackerearthUrl"`
	TopCoderURL      *string `json:"topCoderUrl"`
	GitHubURL        *string `json:"gitHubUrl"`
	ProjectEulerKey  *string `json:"projectEulerKey"`
}

// Assignments returns the column updates requested by p.
func (p ProgrammingProfilePatch) Assignments() []Assignment {
	var out []Assignment
	out = setString(out, "prefered_language", p.PreferedLanguage)
	out = setString(out, "code_chef_url", p.CodeChefURL)
	out = setString(out, "hackerearth_url", p.HackerearthURL)
	out = setString(out, "top_coder_url", p.TopCoderURL)
	out = setString(out, "git_hub_url", p.GitHubURL)
	out = setString(out, "project_euler_key", p.ProjectEulerKey)
	return out
}

// ProjectPatch lists the project fields a user may change. A start or end
// time is only rewritten when both its month and year are supplied.
type ProjectPatch struct {
	ProjectName      *string `json:"projectName"`
	BriefDescription *string `json:"briefDescription"`
	GitHubURL        *string `json:"gitHubUrl"`
	StartMonth       *string `json:"startMonth"`
	StartYear        *string `json:"startYear"`
	EndMonth         *string `json:"endMonth"`
	EndYear          *string `json:"endYear"`
}

// Assignments returns the column updates requested by p.
func (p ProjectPatch) Assignments() []Assignment {
	var out []Assignment
	out = setString(out, "project_name", p.ProjectName)
	out = setString(out, "brief_description", p.BriefDescription)
	out = setString(out, "git_hub_url", p.GitHubURL)
	if t, ok := MonthYear(p.StartMonth, p.StartYear); ok {
		out = append(out, Assignment{Column: "start_time", Value: t})
	}
	if t, ok := MonthYear(p.EndMonth, p.EndYear); ok {
		out = append(out, Assignment{Column: "end_time", Value: t})
	}
	return out
}

// TechPatch lists the tech fields a user may change.
type TechPatch struct {
	TechName     *string `json:"techName"`
	LearningYear *string `json:"learningYear"`
	StillUseIt   *bool   `json:"stillUseIt"`
	Level        *int    `json:"level"`
	SourceName   *string `json:"sourceName"`
	SourceURL    *string `json:"sourceUrl"`
}

// Assignments returns the column updates requested by p.
func (p TechPatch) Assignments() []Assignment {
	var out []Assignment
	out = setString(out, "tech_name", p.TechName)
	out = setString(out, "learning_year", p.LearningYear)
	if p.StillUseIt != nil {
		out = append(out, Assignment{Column: "still_use_it", Value: *p.StillUseIt})
	}
	if p.Level != nil {
		out = append(out, Assignment{Column: "level", Value: *p.Level})
	}
	out = setString(out, "source_name", p.SourceName)
	out = setString(out, "source_url", p.SourceURL)
	return out
}

// MonthYear joins a month and year into the "Month, Year" form used for
// project times. It reports false unless both parts are non-empty.
func MonthYear(month, year *string) (string, bool) {
	if month == nil || year == nil || *month == "" || *year == "" {
		return "", false
	}
	return *month + ", " + *year, true
}
