package display

// RatingLabel maps a 0–10 rating to its qualitative label, evaluated
// highest band first. The 6–7 and 7–8 bands both read "Good"; that is the
// shipped behavior, so both cases stay spelled out rather than merged.
func RatingLabel(rating float64) string {
	switch {
	case rating >= 9.0:
		return "Wonderful"
	case rating >= 8.5:
		return "Excellent"
	case rating >= 8.0:
		return "Very Good"
	case rating >= 7.0:
		return "Good"
	case rating >= 6.0:
		return "Good"
	default:
		return "Rating"
	}
}
