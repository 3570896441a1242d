package projection

// Purchase records one upgrade bought during a simulation.
type Purchase struct {
	Day   int     `json:"day"`
	Index int     `json:"index"`
	Price float64 `json:"price"`
}

// Point is the state of a scenario at the end of one simulated day.
type Point struct {
	Day                 int     `json:"day"`
	Balance             float64 `json:"balance"`
	UnbonusedProduction float64 `json:"unbonusedProduction"`
	BonusedProduction   float64 `json:"bonusedProduction"`
	BonusFraction       float64 `json:"bonusFraction"`
	RewardRate          float64 `json:"rewardRate"`
}

// Trajectory is the day-indexed output of one scenario's simulation. All five
// series have the same length, the number of simulated days.
type Trajectory struct {
	Balance             []float64  `json:"balance"`
	UnbonusedProduction []float64  `json:"unbonusedProduction"`
	BonusedProduction   []float64  `json:"bonusedProduction"`
	BonusFraction       []float64  `json:"bonusFraction"`
	RewardRate          []float64  `json:"rewardRate"`
	Purchases           []Purchase `json:"purchases"`
}

func newTrajectory(days int) *Trajectory {
	return &Trajectory{
		Balance:             make([]float64, 0, days),
		UnbonusedProduction: make([]float64, 0, days),
		BonusedProduction:   make([]float64, 0, days),
		BonusFraction:       make([]float64, 0, days),
		RewardRate:          make([]float64, 0, days),
		Purchases:           []Purchase{},
	}
}

// Len returns the number of simulated days.
func (t *Trajectory) Len() int {
	return len(t.Balance)
}

// Point returns the state at day, and false when day is outside the trajectory.
func (t *Trajectory) Point(day int) (Point, bool) {
	if day < 0 || day >= t.Len() {
		return Point{}, false
	}
	return Point{
		Day:                 day,
		Balance:             t.Balance[day],
		UnbonusedProduction: t.UnbonusedProduction[day],
		BonusedProduction:   t.BonusedProduction[day],
		BonusFraction:       t.BonusFraction[day],
		RewardRate:          t.RewardRate[day],
	}, true
}

// Final returns the last point, and false for an empty trajectory.
func (t *Trajectory) Final() (Point, bool) {
	return t.Point(t.Len() - 1)
}

func (t *Trajectory) append(balance, unbonused, bonused, bonus, reward float64) {
	t.Balance = append(t.Balance, balance)
	t.UnbonusedProduction = append(t.UnbonusedProduction, unbonused)
	t.BonusedProduction = append(t.BonusedProduction, bonused)
	t.BonusFraction = append(t.BonusFraction, bonus)
	t.RewardRate = append(t.RewardRate, reward)
}
