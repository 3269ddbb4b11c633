// Package dbtest berisi alat bantu test untuk repository in-memory.
package dbtest

import "sync"

// FaultInjector dipakai repository in-memory supaya test bisa memaksa gagal
// di tengah batch (mis. insert ke-2 dari 3) dan memastikan rollback benar.
type FaultInjector struct {
	mu    sync.Mutex
	rules map[string]*faultRule
}

type faultRule struct {
	nth   int // gagal pada panggilan ke-nth (1-based)
	calls int
	err   error
}

// FailOn: operasi op gagal dengan err pada panggilan ke-nth (sekali saja).
func (f *FaultInjector) FailOn(op string, nth int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rules == nil {
		f.rules = map[string]*faultRule{}
	}
	f.rules[op] = &faultRule{nth: nth, err: err}
}

// Check dipanggil implementasi sebelum operasi op dijalankan.
func (f *FaultInjector) Check(op string) error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rules[op]
	if !ok {
		return nil
	}
	r.calls++
	if r.calls == r.nth {
		delete(f.rules, op)
		return r.err
	}
	return nil
}
