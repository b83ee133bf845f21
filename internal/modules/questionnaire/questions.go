// Package questionnaire holds the investment-propensity questionnaire, answer
// validation and the scoring engine.
package questionnaire

// QuestionID identifies a question in the questionnaire
type QuestionID string

// Question identifiers, in presentation order
const (
	Age                  QuestionID = "age"
	InvestmentPeriod     QuestionID = "investment_period"
	InvestmentExperience QuestionID = "investment_experience"
	KnowledgeLevel       QuestionID = "knowledge_level"
	AssetRatio           QuestionID = "asset_ratio"
	IncomeSource         QuestionID = "income_source"
	RiskTolerance        QuestionID = "risk_tolerance"
)

// Question is a single questionnaire item. Options and Points are index-aligned.
type Question struct {
	ID          QuestionID `json:"id"`
	Title       string     `json:"title"`
	Options     []string   `json:"options"`
	Points      []float64  `json:"points"`
	MultiSelect bool       `json:"multi_select"`
}

// Disclaimer is shown beneath every diagnosis result.
const Disclaimer = "본 진단 결과는 참고용이며, 실제 투자 결정 시에는 전문가와 상담하시기 바랍니다."

var questions = []Question{
	{
		ID:      Age,
		Title:   "1. 당신의 연령대는 어떻게 됩니까?",
		Options: []string{"19세 이하", "20세~40세", "41세~50세", "51세~60세", "61세 이상"},
		Points:  []float64{12.5, 12.5, 9.3, 6.2, 3.1},
	},
	{
		ID:      InvestmentPeriod,
		Title:   "2. 투자하고자 하는 자금의 투자 가능 기간은 얼마나 됩니까?",
		Options: []string{"6개월 이내", "6개월 이상~1년 이내", "1년 이상~2년 이내", "2년 이상~3년 이내", "3년 이상"},
		Points:  []float64{3.1, 6.2, 9.3, 12.5, 15.6},
	},
	{
		ID:    InvestmentExperience,
		Title: "3. 다음 중 투자경험과 가장 가까운 것은 어느 것입니까? (중복 가능)",
		Options: []string{
			"은행의 예·적금, 국채, 지방채, 보증채, MMF, CMA 등",
			"금융채, 신용도가 높은 회사채, 채권형펀드, 원금보존추구형ELS 등",
			"신용도 중간 등급의 회사채, 원금의 일부만 보장되는 ELS, 혼합형펀드 등",
			"신용도가 낮은 회사채, 주식, 원금이 보장되지 않는 ELS, 시장수익률 수준의 수익을 추구하는 주식형펀드 등",
			"ELW, 선물옵션, 시장수익률 이상의 수익을 추구하는 주식형펀드, 파생상품에 투자하는 펀드, 주식 신용거래 등",
		},
		Points:      []float64{3.1, 6.2, 9.3, 12.5, 15.6},
		MultiSelect: true,
	},
	{
		ID:    KnowledgeLevel,
		Title: "4. 금융상품 투자에 대한 본인의 지식수준은 어느 정도라고 생각하십니까?",
		Options: []string{
			"[매우 낮은 수준] 투자의사 결정을 스스로 내려본 경험이 없는 정도",
			"[낮은 수준] 주식과 채권의 차이를 구별할 수 있는 정도",
			"[높은 수준] 투자할 수 있는 대부분의 금융상품의 차이를 구별할 수 있는 정도",
			"[매우 높은 수준] 금융상품을 비롯하여 모든 투자대상 상품의 차이를 이해할 수 있는 정도",
		},
		Points: []float64{3.1, 6.2, 9.3, 12.5},
	},
	{
		ID:      AssetRatio,
		Title:   "5. 현재 투자하고자 하는 자금은 전체 금융자산(부동산 등을 제외) 중 어느 정도의 비중을 차지합니까?",
		Options: []string{"10% 이내", "10% 이상~20% 이내", "20% 이상~30% 이내", "30% 이상~40% 이내", "40% 이상"},
		Points:  []float64{15.6, 12.5, 9.3, 6.2, 3.1},
	},
	{
		ID:    IncomeSource,
		Title: "6. 다음 중 당신의 수입원을 가장 잘 나타내고 있는 것은 어느 것입니까?",
		Options: []string{
			"현재 일정한 수입이 발생하고 있으며, 향후 현재 수준을 유지하거나 증가할 것으로 예상된다.",
			"현재 일정한 수입이 발생하고 있으나, 향후 감소하거나 불안정할 것으로 예상된다.",
			"현재 일정한 수입이 없으며, 연금이 주수입원이다.",
		},
		Points: []float64{9.3, 6.2, 3.1},
	},
	{
		ID:    RiskTolerance,
		Title: "7. 만약 투자원금에 손실이 발생할 경우 다음 중 감수할 수 있는 손실 수준은 어느 것입니까?",
		Options: []string{
			"무슨 일이 있어도 투자원금은 보전되어야 한다.",
			"10% 미만까지는 손실을 감수할 수 있을 것 같다.",
			"20% 미만까지는 손실을 감수할 수 있을 것 같다.",
			"기대수익이 높다면 위험이 높아도 상관하지 않겠다.",
		},
		Points: []float64{-6.2, 6.2, 12.5, 18.7},
	},
}

var questionIndex = func() map[QuestionID]int {
	m := make(map[QuestionID]int, len(questions))
	for i, q := range questions {
		m[q.ID] = i
	}
	return m
}()

// All returns the questionnaire in presentation order. The returned slice is a copy.
func All() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// Lookup returns the question with the given id
func Lookup(id QuestionID) (Question, bool) {
	i, ok := questionIndex[id]
	if !ok {
		return Question{}, false
	}
	return questions[i], true
}

// IDs returns the question ids in presentation order
func IDs() []QuestionID {
	ids := make([]QuestionID, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}
