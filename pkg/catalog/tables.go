package catalog

// supportedCrypto is the fixed allow-list of cryptocurrencies the client
// tracks. Upstream listings are filtered to this set.
var supportedCrypto = map[string]struct{}{
	"bitcoin":      {},
	"ethereum":     {},
	"tether":       {},
	"binancecoin":  {},
	"solana":       {},
	"ripple":       {},
	"usd-coin":     {},
	"cardano":      {},
	"dogecoin":     {},
	"polkadot":     {},
	"litecoin":     {},
	"tron":         {},
	"chainlink":    {},
	"avalanche-2":  {},
	"matic-network": {},
	"monero":       {},
	"stellar":      {},
	"cosmos":       {},
}

// popularCrypto is the curated subset shown before the user searches.
// Every entry here must be reachable through the alias table.
var popularCrypto = []string{
	"bitcoin", "ethereum", "tether", "binancecoin", "solana", "ripple",
}

// popularFiat is the curated fiat subset.
var popularFiat = []string{"usd", "eur", "gbp", "jpy", "try"}

// aliases maps common tickers to canonical identifiers. Applied on every
// lookup before cache or network access.
var aliases = map[string]string{
	"btc":   "bitcoin",
	"eth":   "ethereum",
	"usdt":  "tether",
	"bnb":   "binancecoin",
	"sol":   "solana",
	"xrp":   "ripple",
	"usdc":  "usd-coin",
	"ada":   "cardano",
	"doge":  "dogecoin",
	"dot":   "polkadot",
	"ltc":   "litecoin",
	"trx":   "tron",
	"link":  "chainlink",
	"avax":  "avalanche-2",
	"matic": "matic-network",
	"xmr":   "monero",
	"xlm":   "stellar",
	"atom":  "cosmos",
}

// TickerFor returns the short ticker for a canonical crypto id, when the
// alias table knows one. Adapters keyed by ticker symbols use it to translate
// canonical ids into their upstream's vocabulary.
func TickerFor(id string) (string, bool) {
	ticker, ok := tickersByID[Normalize(id)]
	return ticker, ok
}

var tickersByID = buildTickersByID()

func buildTickersByID() map[string]string {
	byID := make(map[string]string, len(aliases))
	for ticker, id := range aliases {
		byID[id] = ticker
	}
	return byID
}

// cryptoIdentifiers is the deny-list used to classify identifiers: anything
// here is crypto, everything else is treated as fiat. It contains both the
// canonical ids and the tickers so classification works pre-normalization.
var cryptoIdentifiers = buildCryptoIdentifiers()

func buildCryptoIdentifiers() map[string]struct{} {
	set := make(map[string]struct{}, len(supportedCrypto)+len(aliases))
	for id := range supportedCrypto {
		set[id] = struct{}{}
	}
	for ticker, id := range aliases {
		set[ticker] = struct{}{}
		set[id] = struct{}{}
	}
	return set
}

// fiatNames maps ISO codes to display names for the fiat catalog; codes not
// listed fall back to the uppercased code.
var fiatNames = map[string]string{
	"usd": "US Dollar",
	"eur": "Euro",
	"gbp": "British Pound",
	"jpy": "Japanese Yen",
	"try": "Turkish Lira",
	"rub": "Russian Ruble",
	"cad": "Canadian Dollar",
	"aud": "Australian Dollar",
	"chf": "Swiss Franc",
	"cny": "Chinese Yuan",
	"inr": "Indian Rupee",
	"krw": "South Korean Won",
	"brl": "Brazilian Real",
	"mxn": "Mexican Peso",
	"sek": "Swedish Krona",
	"nok": "Norwegian Krone",
	"pln": "Polish Zloty",
	"zar": "South African Rand",
	"aed": "UAE Dirham",
	"sar": "Saudi Riyal",
	"egp": "Egyptian Pound",
	"kwd": "Kuwaiti Dinar",
}
