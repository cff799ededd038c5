package utils

// TargetTypes is the catalog of objects a round can ask players to hunt.
// The type is picked fresh for every round and broadcast with the round
// start event; clients render the matching art client-side.
var TargetTypes = []string{
	"balloon",
	"rubber_duck",
	"pinecone",
	"gem",
	"mushroom",
	"lantern",
	"seashell",
	"acorn",
	"snowflake",
	"clover",
	"feather",
	"bell",
}
