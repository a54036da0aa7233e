package reward

import (
	"fmt"

	"warmap-server/internal/building"
)

// CycleCount is the length of the reward rotation. The active cycle is
// 1-based; descriptor index is cycle-1.
const CycleCount = 8

// Config maps building id to its 8-cycle reward sequence.
type Config map[string][]building.Reward

// commonRewards is the pool the seed table rotates through. One entry per
// cycle slot; buildings start the rotation at different offsets so the same
// cycle never awards the same thing everywhere.
var commonRewards = []building.Reward{
	{Type: "resource", Name: "Rare Resource Box", Quantity: 2},
	{Type: "material", Name: "Building Materials", Quantity: 3},
	{Type: "speedup", Name: "Speed Up 1h", Quantity: 5},
	{Type: "equipment", Name: "Epic Equipment Shard", Quantity: 5},
	{Type: "hero", Name: "Hero EXP Book", Quantity: 10},
	{Type: "gem", Name: "Gem Box", Quantity: 3},
	{Type: "shield", Name: "Shield 8h", Quantity: 1},
	{Type: "teleport", Name: "Advanced Teleport", Quantity: 1},
}

// SeedConfig builds the default reward table for the fixed fortress and
// stronghold roster.
func SeedConfig() Config {
	config := make(Config, 16)
	for i := 1; i <= 12; i++ {
		id := fmt.Sprintf("F%02d", i)
		config[id] = rotation(i)
	}
	for i := 1; i <= 4; i++ {
		id := fmt.Sprintf("S%02d", i)
		config[id] = rotation(i + 12)
	}
	return config
}

func rotation(offset int) []building.Reward {
	rewards := make([]building.Reward, CycleCount)
	for c := 0; c < CycleCount; c++ {
		rewards[c] = commonRewards[(offset+c)%len(commonRewards)]
	}
	return rewards
}
