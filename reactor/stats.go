package reactor

import "poserspace/proto"

// Stats are the loop's ingest counters. A copy goes out with every frame.
type Stats struct {
	Accepted       uint64 `json:"accepted"`
	Closed         uint64 `json:"closed"`
	Open           int    `json:"open"`
	Bytes          uint64 `json:"bytes"`
	GeoRecords     uint64 `json:"geoRecords"`
	TextRecords    uint64 `json:"textRecords"`
	Dropped        uint64 `json:"dropped"`
	Rejected       uint64 `json:"rejected"`
	ProtocolErrors uint64 `json:"protocolErrors"`
	ReadErrors     uint64 `json:"readErrors"`
	AcceptErrors   uint64 `json:"acceptErrors"`
	Ticks          uint64 `json:"ticks"`
}

func (s *Stats) addRecords(k proto.Kind, n int) {
	switch k {
	case proto.Geo:
		s.GeoRecords += uint64(n)
	case proto.Text:
		s.TextRecords += uint64(n)
	}
}

// Records is the total of accepted data records.
func (s Stats) Records() uint64 {
	return s.GeoRecords + s.TextRecords
}
