package scoring

// LetterGrade maps a 5-dimension average to a letter grade. Cutoffs are
// inclusive on the higher grade: exactly 90 is A+, exactly 80 is A.
func LetterGrade(average float64) string {
	switch {
	case average >= 90:
		return "A+"
	case average >= 80:
		return "A"
	case average >= 70:
		return "B+"
	case average >= 60:
		return "B"
	case average >= 50:
		return "C+"
	case average >= 40:
		return "C"
	case average >= 30:
		return "D"
	default:
		return "F"
	}
}
