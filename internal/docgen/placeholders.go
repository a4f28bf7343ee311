package docgen

// Placeholder tokens expected in the water bill notice template.
const (
	TokenTotalAmount      = "[총요금]"
	TokenTotalUsage       = "[총사용량]"
	TokenServicePeriod    = "[사용기간]"
	TokenUnitPrice        = "[기준금액]"
	TokenLab1Usage        = "[1연구소사용량]"
	TokenLab2Usage        = "[2연구소사용량]"
	TokenLabUsage         = "[연구소사용량]"
	TokenChargedAmount    = "[부과액]"
	TokenServiceMonth     = "[사용기간월]"
	TokenPaymentDueDate   = "[사용기간월다음달말일]"
	TokenChargedAmountKor = "[부과액한글]"
)

// CurrencyUnit is appended to the spelled-out charge.
const CurrencyUnit = "원"

// Tokens lists every placeholder in the order the replacement map is built.
var Tokens = []string{
	TokenTotalAmount,
	TokenTotalUsage,
	TokenServicePeriod,
	TokenUnitPrice,
	TokenLab1Usage,
	TokenLab2Usage,
	TokenLabUsage,
	TokenChargedAmount,
	TokenServiceMonth,
	TokenPaymentDueDate,
	TokenChargedAmountKor,
}
