package domain

// PortionAmount converts a number of portions of f into an amount expressed
// in f.RefUnit. One portion is RefAmount scaled by PortionMultiplier.
func PortionAmount(f FoodItem, qty float64) float64 {
	return qty * f.RefAmount * f.PortionMultiplier
}
