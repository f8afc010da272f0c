package models

import "time"

// TimeFrame таймфрейм графика, для которого запрашивается анализ.
type TimeFrame string

const (
	TimeFrame1M  TimeFrame = "1M"
	TimeFrame5M  TimeFrame = "5M"
	TimeFrame15M TimeFrame = "15M"
	TimeFrame1H  TimeFrame = "1H"
	TimeFrame4H  TimeFrame = "4H"
	TimeFrame1D  TimeFrame = "1D"
	TimeFrame1W  TimeFrame = "1W"
)

// TimeFrames перечисляет допустимые таймфреймы в порядке возрастания.
var TimeFrames = []TimeFrame{
	TimeFrame1M, TimeFrame5M, TimeFrame15M, TimeFrame1H, TimeFrame4H, TimeFrame1D, TimeFrame1W,
}

// Valid сообщает, входит ли таймфрейм в допустимый набор.
func (tf TimeFrame) Valid() bool {
	for _, v := range TimeFrames {
		if v == tf {
			return true
		}
	}
	return false
}

// SignalType направление торгового сигнала.
type SignalType string

const (
	SignalBuy  SignalType = "Buy"
	SignalSell SignalType = "Sell"
)

// Candle одна свеча OHLC.
type Candle struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// TradeSignal основной торговый сигнал анализа.
type TradeSignal struct {
	Type         SignalType `json:"type"`
	EntryPrice   string     `json:"entryPrice"`
	StopLoss     string     `json:"stopLoss"`
	TakeProfit   string     `json:"takeProfit"`
	RiskReward   string     `json:"riskReward"`
	Reasoning    string     `json:"reasoning"`
	Confirmation string     `json:"confirmation"`
}

// GroundingSource источник, на который сослалась модель при поиске.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ForexAnalysis результат анализа валютной пары по схеме структурированного ответа модели.
type ForexAnalysis struct {
	Pair                string            `json:"pair"`
	Timeframe           string            `json:"timeframe"`
	MarketStructure     string            `json:"marketStructure"`
	SupportResistance   []string          `json:"supportResistance"`
	TrendDirection      string            `json:"trendDirection"`
	TrendStrength       string            `json:"trendStrength"`
	SupplyDemandZones   []string          `json:"supplyDemandZones"`
	LiquidityClusters   []string          `json:"liquidityClusters"`
	PrimarySignal       TradeSignal       `json:"primarySignal"`
	AlternativeScenario string            `json:"alternativeScenario"`
	Summary             string            `json:"summary"`
	MockChartData       []Candle          `json:"mockChartData"`
	GroundingSources    []GroundingSource `json:"groundingSources,omitempty"`
}

// AnalysisRecord снимок завершённого анализа в истории.
type AnalysisRecord struct {
	ID          string        `json:"id"`
	RequestedBy string        `json:"requestedBy"`
	CreatedAt   time.Time     `json:"createdAt"`
	Analysis    ForexAnalysis `json:"analysis"`
}

// SignalMessage сообщение для рассылки сигнала в VIP группу через брокер.
type SignalMessage struct {
	ID     string    `json:"id"`
	Pair   string    `json:"pair"`
	Text   string    `json:"text"`
	SentBy string    `json:"sentBy"`
	SentAt time.Time `json:"sentAt"`
}
