package language

// stopwords are high-frequency function words per language. They are short, closed-class
// and rarely shared verbatim across more than two or three languages, which is enough to
// tell the dominant language of a paragraph apart.
var stopwords = map[string][]string{
	"de": {
		"der", "die", "das", "und", "ist", "nicht", "ich", "du", "wir", "sie", "es", "ein", "eine",
		"zu", "mit", "auf", "für", "von", "den", "dem", "auch", "sich", "aber", "noch", "wie", "war",
		"sind", "bei", "nach", "oder", "wenn", "schon", "sehr", "hier",
	},
	"en": {
		"the", "and", "is", "are", "was", "were", "of", "to", "in", "that", "it", "for", "with", "on",
		"this", "you", "be", "have", "has", "not", "but", "they", "we", "at", "from", "or", "an", "by",
		"my", "your", "just", "so", "what", "there", "about", "will", "would", "can", "do",
	},
	"es": {
		"el", "la", "los", "las", "de", "que", "y", "en", "un", "una", "es", "por", "con", "no", "para",
		"se", "del", "al", "lo", "como", "más", "pero", "sus", "le", "ya", "muy", "también", "porque",
		"está", "son", "este", "esta", "yo", "hay",
	},
	"fr": {
		"le", "la", "les", "de", "des", "et", "est", "un", "une", "du", "en", "que", "qui", "pas",
		"pour", "dans", "ce", "il", "elle", "nous", "vous", "je", "sur", "avec", "mais", "au", "aux",
		"très", "plus", "c'est", "sont", "cette", "où", "aussi",
	},
	"id": {
		"yang", "dan", "di", "ini", "itu", "dengan", "untuk", "tidak", "dari", "dalam", "akan", "pada",
		"juga", "saya", "ke", "karena", "ada", "bisa", "sudah", "atau", "kita", "kami", "mereka",
		"lebih", "sangat", "aku", "banget", "nggak", "gak", "sih", "dong", "aja", "kok", "tapi", "jadi",
		"kalau", "buat", "udah", "lagi", "sama", "mau",
	},
	"it": {
		"il", "lo", "la", "gli", "le", "di", "che", "è", "e", "un", "una", "per", "non", "con", "sono",
		"mi", "ma", "del", "della", "questo", "questa", "anche", "come", "più", "ci", "si", "ho", "nel",
		"alla", "molto", "io", "tu", "noi", "perché", "già", "ancora",
	},
	"nl": {
		"de", "het", "een", "en", "van", "is", "dat", "niet", "ik", "je", "we", "zijn", "op", "te",
		"met", "voor", "maar", "ook", "er", "wat", "als", "bij", "nog", "naar", "dit", "deze", "heb",
		"hebben", "wel", "geen", "zo", "heel", "om",
	},
	"pt": {
		"o", "a", "os", "as", "de", "que", "e", "é", "um", "uma", "do", "da", "em", "não", "para",
		"com", "por", "se", "no", "na", "mais", "mas", "como", "muito", "você", "eu", "também", "isso",
		"está", "são", "dos", "das", "ao", "foi",
	},
}
