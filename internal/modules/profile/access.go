package profile

import "errors"

// ErrNotEligible is returned when a category may not receive recommendations
var ErrNotEligible = errors.New("category is not eligible for recommendations")

// Access describes whether a category may proceed to recommendations
type Access string

const (
	// AccessAllowed proceeds without conditions
	AccessAllowed Access = "allowed"
	// AccessRestricted proceeds after a restrictive notice
	AccessRestricted Access = "restricted"
	// AccessBarred never reaches recommendations
	AccessBarred Access = "barred"
)

const (
	barredNotice = "이 앱은 투자 상품 추천을 목적으로 하며, '안정형' 투자 성향에는 적합한 추천을 제공하지 않습니다."

	restrictedNotice = "공격투자형은 매우 높은 위험 감수 성향을 나타내며, 이에 따라 일반적인 종목 추천이 " +
		"극단적인 위험 선호도와 맞지 않을 수 있습니다. 본 서비스는 안정추구형~적극투자형 투자자를 위한 " +
		"균형잡힌 포트폴리오 추천에 특화되어 있으며, 극고위험 상품 추천은 별도의 전문 상담이 필요합니다."
)

// KYCNotice must be acknowledged before recommendations are returned
const KYCNotice = "본 앱에서 제공하는 모든 종목 추천 및 분석 정보는 투자 판단의 참고 자료이며, 투자 권유를 목적으로 하지 않습니다. " +
	"투자 상품은 원금 손실 위험을 포함하며, 모든 투자 결정의 최종 책임은 투자자 본인에게 있습니다. " +
	"제시된 정보는 투자 성향 진단 결과를 바탕으로 한 것이지만, 개인의 재정 상황, 투자 목표, 위험 감수 능력 등을 " +
	"종합적으로 고려하여 신중하게 판단하시기 바랍니다. 과거의 수익률이 미래의 수익률을 보장하지 않습니다."

// Gate is the access decision for a category
type Gate struct {
	Access Access `json:"access"`
	Notice string `json:"notice,omitempty"`
}

// AccessFor returns the gate for a category
func AccessFor(c Category) Gate {
	switch c {
	case Conservative:
		return Gate{Access: AccessBarred, Notice: barredNotice}
	case Aggressive:
		return Gate{Access: AccessRestricted, Notice: restrictedNotice}
	default:
		return Gate{Access: AccessAllowed}
	}
}

// CheckEligible returns ErrNotEligible for barred categories
func CheckEligible(c Category) error {
	if AccessFor(c).Access == AccessBarred {
		return ErrNotEligible
	}
	return nil
}
