// Package derive turns cached market data and display preferences into
// localized, currency-converted values ready to render. Every function is pure
// and leaves its inputs untouched.
package derive

import (
	"crypto-analytics/internal/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. English keys double as the English text.
const (
	MsgTitle          = "Crypto Analytics"
	MsgHighestCap     = "Highest Market Cap"
	MsgHighestGain    = "Highest Gain (24h)"
	MsgHighestLoss    = "Highest Loss (24h)"
	MsgTotalVolume    = "Total Volume"
	MsgHistory        = "%s History"
	MsgChartTitle     = "%[1]s Price (Last %[2]d days)"
	MsgPrice          = "Price"
	MsgDate           = "Date: %s"
	MsgWindow         = "%d days"
	MsgSortBy         = "Sort by:"
	MsgToggleOrder    = "Toggle order"
	MsgExportCSV      = "Export CSV"
	MsgExported       = "Exported %d rows to %s"
	MsgTopFive        = "Top 5 Market Cap Coins"
	MsgOverview       = "%s Overview"
	MsgMarketCap      = "Market Cap"
	MsgVolume24h      = "24h Volume"
	MsgCirculating    = "Circulating Supply"
	MsgMaxSupply      = "Max Supply"
	MsgATH            = "All Time High (ATH)"
	MsgATL            = "All Time Low (ATL)"
	MsgLoading        = "Loading..."
	MsgNoData         = "No data available"
	MsgFetchFailed    = "Could not load data, try again"
	MsgRateFailed     = "Exchange rate unavailable, showing last known rate"
	MsgToggleLanguage = "Toggle language and currency"
	MsgCoin           = "Coin"
	MsgExportDisabled = "Export is not available in this session"
	MsgKeyHelp        = "1-4 window · s sort · o order · t language/currency · e export · r retry · q quit"
)

// Sort option labels use ids because the Portuguese wording differs from the
// overview's "Market Cap".
var sortLabelKeys = map[domain.SortKey]message.Reference{
	domain.SortByMarketCap: message.Key("sort.market_cap", "Market Cap"),
	domain.SortByPrice:     message.Key("sort.current_price", "Price"),
	domain.SortByChange24h: message.Key("sort.change_24h", "24h Change"),
	domain.SortByVolume:    message.Key("sort.volume", "24h Volume"),
	domain.SortByName:      message.Key("sort.name", "Name"),
}

var translations = map[string][2]string{
	MsgTitle:          {MsgTitle, "Análise de Criptomoedas"},
	MsgHighestCap:     {MsgHighestCap, "Maior Capitalização"},
	MsgHighestGain:    {MsgHighestGain, "Maior Alta (24h)"},
	MsgHighestLoss:    {MsgHighestLoss, "Maior Queda (24h)"},
	MsgTotalVolume:    {MsgTotalVolume, "Volume Total"},
	MsgHistory:        {MsgHistory, "Histórico do %s"},
	MsgChartTitle:     {MsgChartTitle, "Preço de %[1]s (Últimos %[2]d dias)"},
	MsgPrice:          {MsgPrice, "Preço"},
	MsgDate:           {MsgDate, "Data: %s"},
	MsgWindow:         {MsgWindow, "%d dias"},
	MsgSortBy:         {MsgSortBy, "Ordenar por:"},
	MsgToggleOrder:    {MsgToggleOrder, "Inverter ordem"},
	MsgExportCSV:      {MsgExportCSV, "Exportar CSV"},
	MsgExported:       {MsgExported, "%d linhas exportadas para %s"},
	MsgTopFive:        {MsgTopFive, "Top 5 Moedas por Valor de Mercado"},
	MsgOverview:       {MsgOverview, "%s Visão Geral"},
	MsgMarketCap:      {MsgMarketCap, "Valor de Mercado"},
	MsgVolume24h:      {MsgVolume24h, "Volume 24h"},
	MsgCirculating:    {MsgCirculating, "Oferta Circulante"},
	MsgMaxSupply:      {MsgMaxSupply, "Oferta Máxima"},
	MsgATH:            {MsgATH, "Maior Preço (ATH)"},
	MsgATL:            {MsgATL, "Menor Preço (ATL)"},
	MsgLoading:        {MsgLoading, "Carregando..."},
	MsgNoData:         {MsgNoData, "Nenhum dado disponível"},
	MsgFetchFailed:    {MsgFetchFailed, "Não foi possível carregar os dados, tente novamente"},
	MsgRateFailed:     {MsgRateFailed, "Cotação indisponível, exibindo a última conhecida"},
	MsgToggleLanguage: {MsgToggleLanguage, "Alternar idioma e moeda"},
	MsgCoin:           {MsgCoin, "Moeda"},
	MsgExportDisabled: {MsgExportDisabled, "Exportação indisponível nesta sessão"},
	MsgKeyHelp:        {MsgKeyHelp, "1-4 período · s ordenar · o ordem · t idioma/moeda · e exportar · r recarregar · q sair"},

	"sort.market_cap":    {"Market Cap", "Capitalização"},
	"sort.current_price": {"Price", "Preço"},
	"sort.change_24h":    {"24h Change", "Variação 24h"},
	"sort.volume":        {"24h Volume", "Volume 24h"},
	"sort.name":          {"Name", "Nome"},
}

var printers = newPrinters()

func newPrinters() map[domain.Language]*message.Printer {
	b := catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))
	en := domain.LanguageEnglish.Tag()
	pt := domain.LanguagePortuguese.Tag()
	for key, msgs := range translations {
		if err := b.SetString(en, key, msgs[0]); err != nil {
			panic(err)
		}
		if err := b.SetString(pt, key, msgs[1]); err != nil {
			panic(err)
		}
	}
	return map[domain.Language]*message.Printer{
		domain.LanguageEnglish:    message.NewPrinter(en, message.Catalog(b)),
		domain.LanguagePortuguese: message.NewPrinter(pt, message.Catalog(b)),
	}
}

func printer(lang domain.Language) *message.Printer {
	if p, ok := printers[lang]; ok {
		return p
	}
	return printers[domain.LanguageEnglish]
}

// Text renders the message key in lang.
func Text(lang domain.Language, key message.Reference, args ...interface{}) string {
	return printer(lang).Sprintf(key, args...)
}

// SortLabel is the table sort option label for key.
func SortLabel(lang domain.Language, key domain.SortKey) string {
	ref, ok := sortLabelKeys[key]
	if !ok {
		return string(key)
	}
	return Text(lang, ref)
}

// SortOption is one entry of the table's sort selector.
type SortOption struct {
	Key   domain.SortKey `json:"key"`
	Label string         `json:"label"`
}

func SortOptions(lang domain.Language) []SortOption {
	out := make([]SortOption, 0, len(domain.SortKeys))
	for _, k := range domain.SortKeys {
		out = append(out, SortOption{Key: k, Label: SortLabel(lang, k)})
	}
	return out
}

// WindowLabel is the selector label of a history window, e.g. "7 dias".
func WindowLabel(lang domain.Language, days int) string {
	return Text(lang, MsgWindow, days)
}

// Labels carries the static captions of the dashboard in one language.
type Labels struct {
	Title        string `json:"title"`
	HighestCap   string `json:"highest_cap"`
	HighestGain  string `json:"highest_gain"`
	HighestLoss  string `json:"highest_loss"`
	TotalVolume  string `json:"total_volume"`
	History      string `json:"history"`
	Price        string `json:"price"`
	SortBy       string `json:"sort_by"`
	ToggleOrder  string `json:"toggle_order"`
	ExportCSV    string `json:"export_csv"`
	TopFive      string `json:"top_five"`
	Loading      string `json:"loading"`
	NoData       string `json:"no_data"`
	FetchFailed  string `json:"fetch_failed"`
	RateFailed   string `json:"rate_failed"`
	ToggleButton string `json:"toggle_button"`
}

// LabelsFor builds the captions for lang; assetName names the charted asset.
func LabelsFor(lang domain.Language, assetName string) Labels {
	return Labels{
		Title:        Text(lang, MsgTitle),
		HighestCap:   Text(lang, MsgHighestCap),
		HighestGain:  Text(lang, MsgHighestGain),
		HighestLoss:  Text(lang, MsgHighestLoss),
		TotalVolume:  Text(lang, MsgTotalVolume),
		History:      Text(lang, MsgHistory, assetName),
		Price:        Text(lang, MsgPrice),
		SortBy:       Text(lang, MsgSortBy),
		ToggleOrder:  Text(lang, MsgToggleOrder),
		ExportCSV:    Text(lang, MsgExportCSV),
		TopFive:      Text(lang, MsgTopFive),
		Loading:      Text(lang, MsgLoading),
		NoData:       Text(lang, MsgNoData),
		FetchFailed:  Text(lang, MsgFetchFailed),
		RateFailed:   Text(lang, MsgRateFailed),
		ToggleButton: Text(lang, MsgToggleLanguage),
	}
}
