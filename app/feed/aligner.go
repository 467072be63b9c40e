package feed

// Aligner zips per-field sequences into records by position. Sequences from
// independently evaluated location paths correspond only by index; the
// aligner enforces equal length and nothing more.
type Aligner struct{}

func NewAligner() *Aligner {
	return &Aligner{}
}

func (a *Aligner) Run(set RecordSet) ([]Record, error) {
	lengths := make(map[string]int, len(set.Fields)+1)
	for field, values := range set.Fields {
		lengths[field] = len(values)
	}
	if set.HasEnclosures {
		lengths[FieldEnclosure] = len(set.Enclosures)
	}

	count := -1
	for _, n := range lengths {
		if count == -1 {
			count = n
		} else if n != count {
			return nil, &CardinalityMismatchError{Lengths: lengths}
		}
	}
	if count <= 0 {
		return []Record{}, nil
	}

	records := make([]Record, count)
	for i := range records {
		fields := make(map[string]string, len(set.Fields))
		for field, values := range set.Fields {
			fields[field] = values[i]
		}
		records[i] = Record{Fields: fields}
		if set.HasEnclosures {
			enclosure := set.Enclosures[i]
			records[i].Enclosure = &enclosure
		}
	}

	return records, nil
}
