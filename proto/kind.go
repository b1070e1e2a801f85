package proto

// Kind selects how the data records of a connection are interpreted.
type Kind uint8

const (
	Unbound Kind = iota
	Geo
	Text
)

// contentTypes maps Content-type header values to interpreter kinds. New
// variants get a Kind constant and a row here.
var contentTypes = map[string]Kind{
	"x-poserspace/geo":  Geo,
	"x-poserspace/text": Text,
}

// LookupKind returns the kind registered for a content type.
func LookupKind(contentType string) (Kind, bool) {
	k, ok := contentTypes[contentType]
	return k, ok
}

// ContentType is the header value producers send to select k.
func ContentType(k Kind) string {
	for v, kind := range contentTypes {
		if kind == k {
			return v
		}
	}
	return ""
}

func (k Kind) String() string {
	switch k {
	case Geo:
		return "geo"
	case Text:
		return "text"
	default:
		return "unbound"
	}
}
