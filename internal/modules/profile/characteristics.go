package profile

// Characteristics is the static description shown with a diagnosis
type Characteristics struct {
	Description string `json:"description"`
	Products    string `json:"recommended_products"`
}

var characteristics = map[Category]Characteristics{
	Conservative: {
		Description: "예금이나 적금 수준의 수익률을 기대하며, 투자원금에 손실이 발생하는 것을 원하지 않습니다.",
		Products:    "원금손실의 우려가 없는 상품에 투자하는 것이 바람직하며 CMA와 MMF가 좋습니다.",
	},
	ModeratelyConservative: {
		Description: "투자원금의 손실위험은 최소화하고, 이자소득이나 배당소득 수준의 안정적인 투자를 목표로 합니다. " +
			"다만 수익을 위해 단기적인 손실을 수용할 수 있으며, 예·적금보다 높은 수익을 위해 자산 중 일부를 변동성 높은 상품에 투자할 의향이 있습니다.",
		Products: "채권형펀드가 적당하며, 그중에서도 장기회사채펀드 등이 좋습니다.",
	},
	Moderate: {
		Description: "투자에는 그에 상응하는 투자위험이 있음을 충분히 인식하고 있으며, 예·적금보다 높은 수익을 기대할 수 있다면 일정 수준의 손실위험을 감수할 수 있습니다.",
		Products:    "적립식펀드나 주가연동상품처럼 중위험 펀드로 분류되는 상품을 선택하는 것이 좋습니다.",
	},
	ModeratelyAggressive: {
		Description: "투자원금의 보전보다는 위험을 감내하더라도 높은 수준의 투자수익을 추구합니다. " +
			"투자자금의 상당 부분을 주식, 주식형펀드 또는 파생상품 등의 위험자산에 투자할 의향이 있습니다.",
		Products: "국내외 주식형펀드와 원금비보장형 주가연계증권(ELS) 등 고수익·고위험 상품에 투자할 수 있습니다.",
	},
	Aggressive: {
		Description: "시장평균수익률을 훨씬 넘어서는 높은 수준의 투자수익을 추구하며, 이를 위해 자산가치의 변동에 따른 손실위험을 적극 수용할 수 있습니다. " +
			"투자자금 대부분을 주식, 주식형펀드 또는 파생상품 등의 위험자산에 투자할 의향이 있습니다.",
		Products: "주식 비중이 70% 이상인 고위험 펀드가 적당하고, 자산의 10% 정도는 직접투자(주식)도 고려해볼 만합니다.",
	},
}

// CharacteristicsFor returns the description of a category
func CharacteristicsFor(c Category) Characteristics {
	return characteristics[c]
}

// Diagnosis bundles everything shown for a classified score
type Diagnosis struct {
	Score           float64         `json:"score"`
	Category        Category        `json:"category"`
	Label           string          `json:"label"`
	Gate            Gate            `json:"gate"`
	Characteristics Characteristics `json:"characteristics"`
}

// Diagnose classifies a score and attaches the category's gate and description
func Diagnose(total float64) Diagnosis {
	c := Classify(total)
	return Diagnosis{
		Score:           total,
		Category:        c,
		Label:           c.Label(),
		Gate:            AccessFor(c),
		Characteristics: CharacteristicsFor(c),
	}
}
