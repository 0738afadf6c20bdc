package resume

import (
	"context"

	"github.com/explainx/explainx/internal/trace"
)

// Service exposes the instrumented scoring callables. Like the checkout
// service, it is constructed once per process; trace isolation comes
// from the Store on the call context.
type Service struct {
	validateUsers    *trace.Wrapped
	experienceScores *trace.Wrapped
	domainScores     *trace.Wrapped
	salaryScores     *trace.Wrapped
	cgpaScores       *trace.Wrapped
}

func NewService() *Service {
	return &Service{
		validateUsers: trace.Instrument(trace.FuncInfo{
			Name:     "validateUsers",
			Location: "internal/resume/score.go",
			Params:   []string{"apps"},
			Source:   trace.FuncSource(scoreSource, "validateUsers"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return validateUsers(in.Value("apps").([]Application)), nil
		}),
		experienceScores: trace.Instrument(trace.FuncInfo{
			Name:     "calculateExperienceScores",
			Location: "internal/resume/score.go",
			Params:   []string{"apps", "min_exp"},
			Source:   trace.FuncSource(scoreSource, "calculateExperienceScores"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return calculateExperienceScores(in.Value("apps").([]Application), in.Float("min_exp")), nil
		}),
		domainScores: trace.Instrument(trace.FuncInfo{
			Name:     "calculateDomainScores",
			Location: "internal/resume/score.go",
			Params:   []string{"apps", "target_domain"},
			Source:   trace.FuncSource(scoreSource, "calculateDomainScores"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return calculateDomainScores(in.Value("apps").([]Application), in.String("target_domain")), nil
		}),
		salaryScores: trace.Instrument(trace.FuncInfo{
			Name:     "calculateSalaryScores",
			Location: "internal/resume/score.go",
			Params:   []string{"apps", "jd_salary"},
			Source:   trace.FuncSource(scoreSource, "calculateSalaryScores"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return calculateSalaryScores(in.Value("apps").([]Application), in.Float("jd_salary")), nil
		}),
		cgpaScores: trace.Instrument(trace.FuncInfo{
			Name:     "calculateCGPAScores",
			Location: "internal/resume/score.go",
			Params:   []string{"apps"},
			Source:   trace.FuncSource(scoreSource, "calculateCGPAScores"),
		}, func(_ context.Context, in trace.Inputs) (any, error) {
			return calculateCGPAScores(in.Value("apps").([]Application)), nil
		}),
	}
}

// ProcessApplications runs the full selection pipeline against a job
// description: batch validation, experience, domain, salary, and CGPA
// scoring, each stage leaving one trace record over the whole batch.
// It returns the top ten candidates sorted by final score.
func (s *Service) ProcessApplications(ctx context.Context, apps []Application, jd JobDescription) ([]Application, error) {
	valid, err := s.ValidateUsers(ctx, apps)
	if err != nil {
		return nil, err
	}
	exp, err := s.ExperienceScores(ctx, apps, jd.MinExperience)
	if err != nil {
		return nil, err
	}
	domain, err := s.DomainScores(ctx, apps, jd.Domain)
	if err != nil {
		return nil, err
	}
	salary, err := s.SalaryScores(ctx, apps, jd.SalaryBudget)
	if err != nil {
		return nil, err
	}
	cgpa, err := s.CGPAScores(ctx, apps)
	if err != nil {
		return nil, err
	}
	return rankApplications(apps, valid, exp, domain, salary, cgpa), nil
}

// ValidateUsers runs the instrumented batch validity check.
func (s *Service) ValidateUsers(ctx context.Context, apps []Application) ([]bool, error) {
	out, err := s.validateUsers.Call(ctx, nil, map[string]any{"apps": apps})
	if err != nil {
		return nil, err
	}
	return out.([]bool), nil
}

// ExperienceScores runs the instrumented experience scoring.
func (s *Service) ExperienceScores(ctx context.Context, apps []Application, minExp float64) ([]float64, error) {
	out, err := s.experienceScores.Call(ctx, nil, map[string]any{"apps": apps, "min_exp": minExp})
	if err != nil {
		return nil, err
	}
	return out.([]float64), nil
}

// DomainScores runs the instrumented domain-match scoring.
func (s *Service) DomainScores(ctx context.Context, apps []Application, targetDomain string) ([]float64, error) {
	out, err := s.domainScores.Call(ctx, nil, map[string]any{"apps": apps, "target_domain": targetDomain})
	if err != nil {
		return nil, err
	}
	return out.([]float64), nil
}

// SalaryScores runs the instrumented salary-alignment scoring.
func (s *Service) SalaryScores(ctx context.Context, apps []Application, jdSalary float64) ([]float64, error) {
	out, err := s.salaryScores.Call(ctx, nil, map[string]any{"apps": apps, "jd_salary": jdSalary})
	if err != nil {
		return nil, err
	}
	return out.([]float64), nil
}

// CGPAScores runs the instrumented academic scoring.
func (s *Service) CGPAScores(ctx context.Context, apps []Application) ([]float64, error) {
	out, err := s.cgpaScores.Call(ctx, nil, map[string]any{"apps": apps})
	if err != nil {
		return nil, err
	}
	return out.([]float64), nil
}
