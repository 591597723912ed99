package enum

type DataFrequency uint8

const (
	_data_frequency_beg DataFrequency = iota
	DataFrequencyMinute
	DataFrequencyDaily
	_data_frequency_end
)

func (f DataFrequency) IsAvailable() bool {
	return f > _data_frequency_beg && f < _data_frequency_end
}

func (f DataFrequency) String() string {
	switch f {
	case DataFrequencyMinute:
		return "minute"
	case DataFrequencyDaily:
		return "daily"
	default:
		return "unknown"
	}
}
