package services

import "time"

func (s *BookingService) SetClock(now func() time.Time) { s.now = now }
func (s *ProofService) SetClock(now func() time.Time)   { s.now = now }
func (s *ReviewService) SetClock(now func() time.Time)  { s.now = now }
func (a *AutoApprover) SetClock(now func() time.Time)   { a.now = now }
