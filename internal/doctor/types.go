package doctor

// Category groups checks by what they inspect.
type Category string

const (
	CategoryEnv    Category = "env"
	CategoryConfig Category = "config"
	CategoryRepo   Category = "repo"
	CategoryPerf   Category = "perf"
)

// Categories in report order
var Categories = []Category{CategoryEnv, CategoryConfig, CategoryRepo, CategoryPerf}

// Status is the outcome of a single check.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

// Symbol returns the marker printed in front of a check.
func (s Status) Symbol() string {
	switch s {
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "✓"
	}
}

// MarshalText renders the status by name.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusWarn:
		return []byte("warn"), nil
	case StatusFail:
		return []byte("fail"), nil
	default:
		return []byte("ok"), nil
	}
}

// Check is the result of one diagnostic.
type Check struct {
	Category Category `json:"category"`
	Name     string   `json:"name"`
	Status   Status   `json:"status"`
	Detail   string   `json:"detail"`
	Hint     string   `json:"hint,omitempty"` // what to change, for warnings and failures
}

// Report collects all checks of a run.
type Report struct {
	Checks []Check `json:"checks"`
}

// Count returns how many checks ended with status s.
func (r Report) Count(s Status) int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == s {
			n++
		}
	}
	return n
}

// Failed reports whether any check failed.
func (r Report) Failed() bool {
	return r.Count(StatusFail) > 0
}

func (r *Report) add(cat Category, name string, status Status, detail, hint string) {
	r.Checks = append(r.Checks, Check{Category: cat, Name: name, Status: status, Detail: detail, Hint: hint})
}
