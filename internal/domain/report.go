package domain

// CancellerStat число отмен у одного человека
type CancellerStat struct {
	PersonDNI      int64
	FullName       string
	CancelledCount int
}
