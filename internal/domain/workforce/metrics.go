package workforce

// Metric codes shared with the scoring registry. The values are the wire
// contract between contexts; the packages stay import-free of each other.
const (
	MetricPunctuality    = "attendance_punctuality"
	MetricTaskCompletion = "task_completion"
	MetricTaskAccuracy   = "task_accuracy"
)

// MetricInputs are the per-user tallies for one pay period that the raw
// metric values derive from
type MetricInputs struct {
	WorkingDays int // Days worked (present or half day)
	OnTimeDays  int // Worked days with a punctual check-in
	TasksDue    int // Non-cancelled tasks due in the period
	TasksOnTime int // Tasks completed by their due date
	RatingCount int // Completed tasks carrying a review rating
	RatingSum   int // Sum of those ratings
}

// CollectMetricInputs tallies inputs from a period's attendance records and
// tasks. Callers pass pre-filtered slices; cancelled tasks never count.
func CollectMetricInputs(records []AttendanceRecord, tasks []WorkTask) MetricInputs {
	var in MetricInputs
	for _, r := range records {
		if !r.Status.CountsAsWorked() {
			continue
		}
		in.WorkingDays++
		if r.OnTime {
			in.OnTimeDays++
		}
	}
	for i := range tasks {
		t := &tasks[i]
		if t.Status == TaskStatusCancelled {
			continue
		}
		in.TasksDue++
		if t.CompletedOnTime() {
			in.TasksOnTime++
		}
		if t.Rating != nil {
			in.RatingCount++
			in.RatingSum += *t.Rating
		}
	}
	return in
}

// PunctualityScore is the share of worked days with a punctual check-in,
// on a 0-100 scale. No worked days yields zero.
func (in MetricInputs) PunctualityScore() float64 {
	if in.WorkingDays <= 0 {
		return 0
	}
	return clampMetric(float64(in.OnTimeDays) / float64(in.WorkingDays) * 100)
}

// CompletionScore is the share of due tasks completed by their due date,
// on a 0-100 scale. No due tasks yields zero.
func (in MetricInputs) CompletionScore() float64 {
	if in.TasksDue <= 0 {
		return 0
	}
	return clampMetric(float64(in.TasksOnTime) / float64(in.TasksDue) * 100)
}

// AccuracyScore scales the mean review rating (1-5) onto 0-100.
// No rated tasks yields zero.
func (in MetricInputs) AccuracyScore() float64 {
	if in.RatingCount <= 0 {
		return 0
	}
	mean := float64(in.RatingSum) / float64(in.RatingCount)
	return clampMetric(mean * 20)
}

// RawValues returns the derived metrics keyed by metric code, ready for the
// scoring registry
func (in MetricInputs) RawValues() map[string]float64 {
	return map[string]float64{
		MetricPunctuality:    in.PunctualityScore(),
		MetricTaskCompletion: in.CompletionScore(),
		MetricTaskAccuracy:   in.AccuracyScore(),
	}
}

func clampMetric(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
