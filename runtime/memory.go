package runtime

import (
	"github.com/brimdata/gather/qerr"
)

// Monitor tracks the memory held by the buffered state of a query's
// operators (open hash groups, rows retained for INTO, sort buffers, scan
// batches) against the query's memory ceiling.  A limit of zero means
// unlimited.  Operators charge and release memory through Accounts and must
// charge as they accumulate, not only when a group or buffer is complete, so
// that no single group can grow past the ceiling unnoticed.
type Monitor struct {
	limit int64
	used  int64
	peak  int64
}

func NewMonitor(limit int64) *Monitor {
	return &Monitor{limit: limit}
}

func (m *Monitor) Limit() int64 { return m.limit }
func (m *Monitor) Used() int64  { return m.used }
func (m *Monitor) Peak() int64  { return m.peak }

func (m *Monitor) grow(what string, n int64) error {
	if m.limit > 0 && m.used+n > m.limit {
		return qerr.ResourceLimit(what, m.used+n, m.limit)
	}
	m.used += n
	m.peak = max(m.peak, m.used)
	return nil
}

func (m *Monitor) shrink(n int64) {
	m.used = max(m.used-n, 0)
}

// NewAccount returns an account named by what, which appears in resource
// limit errors.
func (m *Monitor) NewAccount(what string) *Account {
	return &Account{monitor: m, what: what}
}

// Account is the share of a Monitor held by one operator.
type Account struct {
	monitor *Monitor
	what    string
	used    int64
}

// Grow charges n bytes to the account or returns an error of kind
// qerr.KindResourceLimitExceeded if that would exceed the ceiling, in which
// case nothing is charged.
func (a *Account) Grow(n int) error {
	if err := a.monitor.grow(a.what, int64(n)); err != nil {
		return err
	}
	a.used += int64(n)
	return nil
}

func (a *Account) Shrink(n int) {
	s := min(int64(n), a.used)
	a.used -= s
	a.monitor.shrink(s)
}

// Clear releases everything charged to the account.
func (a *Account) Clear() {
	a.monitor.shrink(a.used)
	a.used = 0
}

func (a *Account) Used() int64 {
	return a.used
}
