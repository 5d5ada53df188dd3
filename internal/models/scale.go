package models

// Scale is the bucketed mood of a dream.
type Scale string

const (
	ScaleGreat     Scale = "great"
	ScaleGood      Scale = "good"
	ScaleOK        Scale = "ok"
	ScaleBad       Scale = "bad"
	ScaleNightmare Scale = "nightmare"
)

// ScaleOf buckets a normalized severity.
func ScaleOf(severity float64) Scale {
	switch {
	case severity >= 0.9:
		return ScaleGreat
	case severity >= 0.6:
		return ScaleGood
	case severity >= 0.4:
		return ScaleOK
	case severity >= 0.2:
		return ScaleBad
	default:
		return ScaleNightmare
	}
}
