package finance

// PaymentMethod is the channel a sale payment was collected through.
// The set is closed; anything else is rejected at the domain boundary.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"          // Cash in the drawer
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER" // Bank transfer
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"    // Debit card terminal
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"   // Credit card terminal
	PaymentMethodWechat       PaymentMethod = "WECHAT"        // WeChat Pay wallet
	PaymentMethodAlipay       PaymentMethod = "ALIPAY"        // Alipay wallet
	PaymentMethodOther        PaymentMethod = "OTHER"         // Other methods
)

// AllPaymentMethods returns every accepted method in display order
func AllPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentMethodCash,
		PaymentMethodBankTransfer,
		PaymentMethodDebitCard,
		PaymentMethodCreditCard,
		PaymentMethodWechat,
		PaymentMethodAlipay,
		PaymentMethodOther,
	}
}

// IsValid checks if the payment method is one of the accepted channels
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodDebitCard,
		PaymentMethodCreditCard, PaymentMethodWechat, PaymentMethodAlipay, PaymentMethodOther:
		return true
	}
	return false
}

// IsCash reports whether the method moves physical cash through the drawer
func (m PaymentMethod) IsCash() bool {
	return m == PaymentMethodCash
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}
