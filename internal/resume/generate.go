package resume

import (
	"fmt"
	"math"
	"math/rand"
)

var (
	mockNames = []string{
		"John", "Jane", "Alice", "Bob", "Charlie",
		"David", "Eve", "Frank", "Grace", "Heidi",
	}
	mockDomains = []string{
		"backend", "frontend", "fullstack", "data_science", "devops", "mobile",
	}
)

// GenerateApplications produces count mock applications for simulation
// runs. Roughly 95% of applicants come out verified; salaries land on
// round hundreds.
func GenerateApplications(count int) []Application {
	apps := make([]Application, 0, count)
	for i := 0; i < count; i++ {
		apps = append(apps, Application{
			ID:              fmt.Sprintf("APP-%04d", i+1),
			Name:            fmt.Sprintf("%s %d", mockNames[rand.Intn(len(mockNames))], i),
			Email:           fmt.Sprintf("user%d@example.com", i),
			Verified:        rand.Float64() > 0.05,
			ExperienceYears: roundTo(uniform(0, 15), 1),
			Domain:          mockDomains[rand.Intn(len(mockDomains))],
			CurrentSalary:   roundTo(uniform(30000, 150000), -2),
			ExpectedSalary:  roundTo(uniform(40000, 200000), -2),
			CGPA:            roundTo(uniform(7.0, 10.0), 2),
		})
	}
	return apps
}

func uniform(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

// roundTo rounds to the given number of decimal digits; negative digits
// round to tens, hundreds, and so on.
func roundTo(value float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(value*scale) / scale
}
