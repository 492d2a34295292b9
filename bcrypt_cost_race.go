//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

func passwordHashCost() int {
	// Reduce cost for race-enabled builds so test suites can run with strict timeouts.
	return bcrypt.MinCost
}

func capHashCost(cost int) int {
	return min(cost, bcrypt.DefaultCost)
}
