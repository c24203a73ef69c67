package config

// defaultMachinePhrases are stock phrases over-represented in machine-generated copy.
var defaultMachinePhrases = []string{
	"delve",
	"delve into",
	"tapestry",
	"rich tapestry",
	"testament to",
	"in today's fast-paced world",
	"it is important to note",
	"it's worth noting",
	"in conclusion",
	"furthermore",
	"moreover",
	"additionally",
	"navigate the complexities",
	"unlock the potential",
	"embark on a journey",
	"look no further",
	"in the realm of",
	"plays a crucial role",
	"ever-evolving",
	"cutting-edge",
	"seamlessly",
	"game-changer",
	"hidden gem",
	"nestled",
	"bustling",
	"vibrant",
	"elevate your",
	"whether you're a",
}

// defaultConstructions are case-insensitive expressions for machine-typical sentence shapes,
// such as an abstract subject followed by a reporting verb.
var defaultConstructions = []string{
	`(?i)\b(this|the) (article|post|guide|review|piece|caption|text) (explores|delves|highlights|examines|discusses|showcases)\b`,
	`(?i)\b(experts|studies|research|critics|many people) (say|suggest|agree|note|show|believe)\b`,
	`(?i)\bit is (important|essential|crucial|worth) (to note|noting|to remember|mentioning)\b`,
	`(?i)\bnot only\b[^.!?]{1,80}\bbut also\b`,
	`(?i)\b(whether you're|whether you are)\b[^.!?]{1,60}\bor\b`,
	`(?i)\b(overall|ultimately|in summary),`,
}
