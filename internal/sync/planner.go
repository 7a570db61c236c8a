package sync

// Plan partitions normalized records into an insert set and an update set by
// matching each record's external id against snapshot, a one-time bulk read
// of external_id → local id for every existing row. Matched records carry
// their local id and are scheduled for a full-column update regardless of
// whether any field changed; there is no dirty-checking.
func Plan(records []Record, snapshot map[int64]int64) (toInsert, toUpdate []Record) {
	for _, rec := range records {
		if id, ok := snapshot[rec.Evento.ExternalID]; ok {
			rec.LocalID = id
			toUpdate = append(toUpdate, rec)
			continue
		}
		toInsert = append(toInsert, rec)
	}
	return toInsert, toUpdate
}
