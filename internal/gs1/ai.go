package gs1

import "fmt"

// part is one data field of an AI: numeric (N) or CSET 82 (X), with a length
// range. Fixed fields have min == max.
type part struct {
	numeric bool
	min     int
	max     int
	check   bool // last digit is a GS1 mod-10 check digit
	date    bool // YYMMDD
}

// Definition describes the data an AI accepts.
type Definition struct {
	Code  string
	Title string
	parts []part
}

// MaxLength returns the maximum data length of the AI.
func (d Definition) MaxLength() int {
	n := 0
	for _, p := range d.parts {
		n += p.max
	}
	return n
}

// MinLength returns the minimum data length of the AI.
func (d Definition) MinLength() int {
	n := 0
	for _, p := range d.parts {
		n += p.min
	}
	return n
}

// Predefined reports whether the AI has a predefined total length, which
// means no separator is needed after its data.
func (d Definition) Predefined() bool {
	return predefinedPrefixes[d.Code[:2]]
}

// predefinedPrefixes lists the AI prefixes of the GS1 predefined length table.
var predefinedPrefixes = map[string]bool{
	"00": true, "01": true, "02": true, "03": true, "04": true,
	"11": true, "12": true, "13": true, "14": true, "15": true, "16": true, "17": true, "18": true, "19": true,
	"20": true, "31": true, "32": true, "33": true, "34": true, "35": true, "36": true, "41": true,
}

func n(length int) part { return part{numeric: true, min: length, max: length} }
func nCheck(length int) part { return part{numeric: true, min: length, max: length, check: true} }
func nUpTo(maxLen int) part { return part{numeric: true, min: 1, max: maxLen} }
func xUpTo(maxLen int) part { return part{min: 1, max: maxLen} }
func date() part { return part{numeric: true, min: 6, max: 6, date: true} }
func def(code, title string, parts ...part) Definition {
	return Definition{Code: code, Title: title, parts: parts}
}

var definitions = map[string]Definition{}

func register(d Definition) { definitions[d.Code] = d }

func init() {
	for _, d := range []Definition{
		def("00", "SSCC", nCheck(18)),
		def("01", "GTIN", nCheck(14)),
		def("02", "CONTENT", nCheck(14)),
		def("10", "BATCH/LOT", xUpTo(20)),
		def("11", "PROD DATE", date()),
		def("12", "DUE DATE", date()),
		def("13", "PACK DATE", date()),
		def("15", "BEST BEFORE", date()),
		def("16", "SELL BY", date()),
		def("17", "USE BY", date()),
		def("20", "VARIANT", n(2)),
		def("21", "SERIAL", xUpTo(20)),
		def("22", "CPV", xUpTo(20)),
		def("235", "TPX", xUpTo(28)),
		def("240", "ADDITIONAL ID", xUpTo(30)),
		def("241", "CUST. PART No.", xUpTo(30)),
		def("242", "MTO VARIANT", nUpTo(6)),
		def("243", "PCN", xUpTo(20)),
		def("250", "SECONDARY SERIAL", xUpTo(30)),
		def("251", "REF. TO SOURCE", xUpTo(30)),
		def("253", "GDTI", nCheck(13), xUpTo(17)),
		def("254", "GLN EXTENSION COMPONENT", xUpTo(20)),
		def("255", "GCN", nCheck(13), nUpTo(12)),
		def("30", "VAR. COUNT", nUpTo(8)),
		def("37", "COUNT", nUpTo(8)),
		def("400", "ORDER NUMBER", xUpTo(30)),
		def("401", "GINC", xUpTo(30)),
		def("402", "GSIN", nCheck(17)),
		def("403", "ROUTE", xUpTo(30)),
		def("410", "SHIP TO LOC", nCheck(13)),
		def("411", "BILL TO", nCheck(13)),
		def("412", "PURCHASE FROM", nCheck(13)),
		def("413", "SHIP FOR LOC", nCheck(13)),
		def("414", "LOC No.", nCheck(13)),
		def("415", "PAY TO", nCheck(13)),
		def("416", "PROD/SERV LOC", nCheck(13)),
		def("417", "PARTY", nCheck(13)),
		def("420", "SHIP TO POST", xUpTo(20)),
		def("421", "SHIP TO POST", n(3), xUpTo(9)),
		def("422", "ORIGIN", n(3)),
		def("423", "COUNTRY - INITIAL PROCESS", n(3), nUpTo(12)),
		def("424", "COUNTRY - PROCESS", n(3)),
		def("425", "COUNTRY - DISASSEMBLY", n(3), nUpTo(12)),
		def("426", "COUNTRY - FULL PROCESS", n(3)),
		def("7001", "NSN", n(13)),
		def("7002", "MEAT CUT", xUpTo(30)),
		def("7003", "EXPIRY TIME", n(10)),
		def("7004", "ACTIVE POTENCY", nUpTo(4)),
		def("8001", "DIMENSIONS", n(14)),
		def("8002", "CMT No.", xUpTo(20)),
		def("8003", "GRAI", nCheck(14), xUpTo(16)),
		def("8004", "GIAI", xUpTo(30)),
		def("8005", "PRICE PER UNIT", n(6)),
		def("8006", "ITIP", nCheck(14), n(4)),
		def("8007", "IBAN", xUpTo(34)),
		def("8008", "PROD TIME", n(8), nUpTo(4)),
		def("8017", "GSRN - PROVIDER", nCheck(18)),
		def("8018", "GSRN - RECIPIENT", nCheck(18)),
		def("8020", "REF No.", xUpTo(25)),
		def("90", "INTERNAL", xUpTo(30)),
	} {
		register(d)
	}

	// Measures: the fourth digit is the implied decimal point position.
	measures := map[string]string{
		"310": "NET WEIGHT (kg)", "311": "LENGTH (m)", "312": "WIDTH (m)", "313": "HEIGHT (m)",
		"314": "AREA (m2)", "315": "NET VOLUME (l)", "316": "NET VOLUME (m3)",
		"320": "NET WEIGHT (lb)", "330": "GROSS WEIGHT (kg)", "331": "LENGTH (m), log",
		"332": "WIDTH (m), log", "333": "HEIGHT (m), log", "334": "AREA (m2), log",
		"335": "VOLUME (l), log", "336": "VOLUME (m3), log", "340": "GROSS WEIGHT (lb)",
		"356": "NET WEIGHT (t oz)", "357": "NET VOLUME (oz)",
	}
	for prefix, title := range measures {
		for d := 0; d <= 5; d++ {
			register(def(fmt.Sprintf("%s%d", prefix, d), title, n(6)))
		}
	}
	for d := 0; d <= 9; d++ {
		register(def(fmt.Sprintf("390%d", d), "AMOUNT", nUpTo(15)))
		register(def(fmt.Sprintf("392%d", d), "PRICE", nUpTo(15)))
	}
	for c := 91; c <= 99; c++ {
		register(def(fmt.Sprintf("%d", c), "INTERNAL", xUpTo(90)))
	}
}

// Lookup returns the definition of an AI code.
func Lookup(code string) (Definition, bool) {
	d, ok := definitions[code]
	return d, ok
}

// lookupPrefix finds the AI at the start of s. GS1 AIs are prefix free, so
// the shortest matching code wins.
func lookupPrefix(s string) (Definition, bool) {
	for length := 2; length <= 4 && length <= len(s); length++ {
		if d, ok := definitions[s[:length]]; ok {
			return d, true
		}
	}
	return Definition{}, false
}
