package engine

// Verdict is the record-level decision: whether the record is PII and
// whether combination (role-based) redaction applies.
type Verdict struct {
	IsPII             bool
	CombinationRedact bool
}

// Decide combines the direct-identifier hit with the signal-count
// threshold, then applies the email-only override as a separate final
// step so its precedence stays visible and independently testable.
func Decide(directHit bool, sig Signals, threshold int) Verdict {
	combination := sig.Count() >= threshold
	v := Verdict{
		IsPII:             directHit || combination,
		CombinationRedact: combination,
	}
	return overrideEmailOnly(v, sig)
}

// overrideEmailOnly demotes a record whose only signal is a validly shaped
// email address: with no corroborating name, address, or device signal, an
// isolated email is treated as non-sensitive. The override wins over a
// direct-identifier hit found in the same record.
func overrideEmailOnly(v Verdict, sig Signals) Verdict {
	if sig.Email && !sig.Name && !sig.Address && !sig.DeviceOrIP {
		v.IsPII = false
		v.CombinationRedact = false
	}
	return v
}
