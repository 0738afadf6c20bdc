// Package resume implements the candidate selection pipeline: parsing
// uploaded candidate data, generating mock applications, and the
// instrumented batch scorers that rank applicants against a job
// description.
package resume

import (
	_ "embed"
	"math"
	"sort"
	"strings"
)

//go:embed score.go
var scoreSource string

// Application is one job application, either parsed from an upload or
// generated by the simulator.
type Application struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Verified        bool    `json:"verified"`
	ExperienceYears float64 `json:"experience_years"`
	Domain          string  `json:"domain"`
	CurrentSalary   float64 `json:"current_salary"`
	ExpectedSalary  float64 `json:"expected_salary"`
	CGPA            float64 `json:"cgpa"`
	FinalScore      float64 `json:"final_score,omitempty"`
}

// JobDescription is the role the applications are scored against.
type JobDescription struct {
	Domain        string  `json:"domain"`
	MinExperience float64 `json:"min_experience"`
	SalaryBudget  float64 `json:"salary_budget"`
}

const (
	// experienceDisqualified marks applicants below the minimum
	// experience; they are filtered out before ranking.
	experienceDisqualified = -100.0

	domainMatchScore = 20.0
	topCandidates    = 10
)

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// An applicant is valid when verified and reachable by email.
func validateUsers(apps []Application) []bool {
	results := make([]bool, len(apps))
	for i, app := range apps {
		results[i] = app.Verified && strings.Contains(app.Email, "@")
	}
	return results
}

// Below the minimum disqualifies; above it earns 2 points per extra
// year, capped at 10.
func calculateExperienceScores(apps []Application, minExp float64) []float64 {
	scores := make([]float64, len(apps))
	for i, app := range apps {
		if app.ExperienceYears < minExp {
			scores[i] = experienceDisqualified
			continue
		}
		bonus := (app.ExperienceYears - minExp) * 2
		if bonus > 10 {
			bonus = 10
		}
		scores[i] = bonus
	}
	return scores
}

func calculateDomainScores(apps []Application, targetDomain string) []float64 {
	scores := make([]float64, len(apps))
	for i, app := range apps {
		if app.Domain == targetDomain {
			scores[i] = domainMatchScore
		}
	}
	return scores
}

// Within budget scores 10; up to 10% over scores 5; up to 20% over is
// neutral; anything beyond is penalized.
func calculateSalaryScores(apps []Application, jdSalary float64) []float64 {
	scores := make([]float64, len(apps))
	for i, app := range apps {
		expected := app.ExpectedSalary
		if expected <= jdSalary {
			scores[i] = 10.0
			continue
		}
		diffPercent := (expected - jdSalary) / jdSalary
		switch {
		case diffPercent <= 0.1:
			scores[i] = 5.0
		case diffPercent <= 0.2:
			scores[i] = 0.0
		default:
			scores[i] = -20.0
		}
	}
	return scores
}

func calculateCGPAScores(apps []Application) []float64 {
	scores := make([]float64, len(apps))
	for i, app := range apps {
		if app.CGPA < 6.0 {
			continue
		}
		scores[i] = (app.CGPA - 6.0) * 2.5
	}
	return scores
}

// rankApplications combines the per-stage scores, drops invalid and
// disqualified applicants, and returns the top candidates sorted by
// final score descending. The sort is stable so equal scores keep their
// input order.
func rankApplications(apps []Application, valid []bool, exp, domain, salary, cgpa []float64) []Application {
	scored := make([]Application, 0, len(apps))
	for i, app := range apps {
		if !valid[i] || exp[i] == experienceDisqualified {
			continue
		}
		total := exp[i] + domain[i] + salary[i] + cgpa[i]
		app.FinalScore = round2(total)
		scored = append(scored, app)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})
	if len(scored) > topCandidates {
		scored = scored[:topCandidates]
	}
	return scored
}
