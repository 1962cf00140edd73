package progress

import "github.com/templui/betterme/internal/model"

// Calculate returns the share of completed steps as a whole percentage,
// rounded half up. A goal without steps is at 0.
func Calculate(steps []*model.Step) int {
	if len(steps) == 0 {
		return 0
	}

	completed := 0
	for _, s := range steps {
		if s.IsCompleted {
			completed++
		}
	}

	// integer form of floor(100*c/t + 0.5)
	return (200*completed + len(steps)) / (2 * len(steps))
}

func Message(percent int) string {
	switch {
	case percent <= 0:
		return "Ready to begin"
	case percent < 25:
		return "Just getting started"
	case percent < 50:
		return "Making progress"
	case percent < 75:
		return "More than halfway"
	case percent < 100:
		return "Almost there"
	default:
		return "Complete!"
	}
}
