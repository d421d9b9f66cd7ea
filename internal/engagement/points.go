package engagement

// ActivityPoints is 50 plus 10 per comment written.
func ActivityPoints(comments int) int { return 50 + 10*comments }

// Level groups points into tiers of 100, starting at 1.
func Level(points int) int { return points/100 + 1 }
