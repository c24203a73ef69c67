package authenticity

// builtinCalques are literal translations that betray a source language, keyed by
// "<source base>><target base>". Persona-specific calques are added on top.
var builtinCalques = map[string][]string{
	"en>id": {
		"membuat sebuah keputusan",
		"mengambil tempat",
		"di akhir hari",
		"membuat rasa",
		"dalam rangka untuk",
	},
	"en>it": {
		"fare senso",
		"alla fine del giorno",
		"prendere posto",
		"realizzare che",
	},
	"en>es": {
		"hacer sentido",
		"al final del día",
		"tomar lugar",
		"aplicar para",
	},
	"en>fr": {
		"faire du sens",
		"à la fin de la journée",
		"prendre place",
		"appliquer pour",
	},
	"en>de": {
		"sinn machen",
		"am ende des tages",
		"platz nehmen in",
	},
	"en>pt": {
		"no final do dia",
		"tomar lugar",
		"aplicar para",
	},
	"it>en": {
		"make a question",
		"since three years",
		"i have thirty years",
		"make a photo",
	},
	"es>en": {
		"make a party",
		"i have hunger",
		"since two years",
		"take a decision",
	},
	"id>en": {
		"same same",
		"already finish",
		"can or not",
	},
	"de>en": {
		"since two years",
		"become a present",
		"make a photo",
	},
}

func calqueKey(source, target string) string {
	return source + ">" + target
}
