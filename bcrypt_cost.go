//go:build !race

package auth

func passwordHashCost() int {
	return DefaultBcryptCost
}

func capHashCost(cost int) int {
	return cost
}
