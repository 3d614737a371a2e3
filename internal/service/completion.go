package service

// CompletionCalculator derives an enrollment's completion flag from its
// status rows. The flag is monotonic: services skip the recompute entirely
// for enrollments that are already completed, so a later downgrade of a
// status never reverts it and the completion notifications stay
// exactly-once.
type CompletionCalculator struct{}

// Passed reports whether done/total reaches the course's passing percent.
// A course with no status rows passes only a zero threshold.
func (CompletionCalculator) Passed(done, total, passingPercent int) bool {
	if total == 0 {
		return passingPercent == 0
	}
	return float64(done)/float64(total)*100 >= float64(passingPercent)
}
