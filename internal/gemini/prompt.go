package gemini

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

func analysisPrompt(pair string, tf models.TimeFrame) string {
	return fmt.Sprintf(`SEARCH THE INTERNET FIRST for the CURRENT LIVE PRICE of %[1]s on the %[2]s timeframe.

Your task is to provide a precision technical analysis based on the ACTUAL current market data you find.

CRITICAL REQUIREMENTS:
1. REAL PRICES: The 'entryPrice' in your signal MUST be within 5-10 pips of the current real-time market price of %[1]s.
2. REAL HISTORY: Generate the 'mockChartData' based on the ACTUAL recent price action (last 20 candles) of %[1]s for the %[2]s timeframe as found in your search.
3. TIMEFRAME CONSISTENCY: Do not give levels from other timeframes. Focus only on %[2]s price action.
4. MARKET STATE: Identify if the market is currently Trending (Bullish/Bearish) or Ranging (Consolidating) based on LIVE data.

Respond with a valid JSON object matching this schema.`, pair, tf)
}

func stringSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeString}
}

func stringArraySchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: stringSchema()}
}

// analysisSchema схема ответа, совпадающая с models.ForexAnalysis.
func analysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Required: []string{
			"pair", "timeframe", "marketStructure", "supportResistance", "trendDirection", "trendStrength",
			"supplyDemandZones", "liquidityClusters", "primarySignal", "alternativeScenario", "summary", "mockChartData",
		},
		Properties: map[string]*genai.Schema{
			"pair":              stringSchema(),
			"timeframe":         stringSchema(),
			"marketStructure":   stringSchema(),
			"supportResistance": stringArraySchema(),
			"trendDirection":    stringSchema(),
			"trendStrength":     stringSchema(),
			"supplyDemandZones": stringArraySchema(),
			"liquidityClusters": stringArraySchema(),
			"primarySignal": {
				Type:     genai.TypeObject,
				Required: []string{"type", "entryPrice", "stopLoss", "takeProfit", "riskReward", "reasoning", "confirmation"},
				Properties: map[string]*genai.Schema{
					"type":         {Type: genai.TypeString, Enum: []string{string(models.SignalBuy), string(models.SignalSell)}},
					"entryPrice":   stringSchema(),
					"stopLoss":     stringSchema(),
					"takeProfit":   stringSchema(),
					"riskReward":   stringSchema(),
					"reasoning":    stringSchema(),
					"confirmation": stringSchema(),
				},
			},
			"alternativeScenario": stringSchema(),
			"summary":             stringSchema(),
			"mockChartData": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type:     genai.TypeObject,
					Required: []string{"time", "open", "high", "low", "close"},
					Properties: map[string]*genai.Schema{
						"time":  stringSchema(),
						"open":  {Type: genai.TypeNumber},
						"high":  {Type: genai.TypeNumber},
						"low":   {Type: genai.TypeNumber},
						"close": {Type: genai.TypeNumber},
					},
				},
			},
		},
	}
}
