package dfxml

import (
	"encoding/xml"
	"io"
)

// ReadPartitions parses and returns all <volume> elements from the reader.
func ReadPartitions(r io.Reader) ([]PartitionObject, error) {
	dec := xml.NewDecoder(r)
	var objs []PartitionObject

	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == "volume" {
			var obj PartitionObject
			if err := dec.DecodeElement(&obj, &start); err != nil {
				return nil, err
			}
			objs = append(objs, obj)
		}
	}
	return objs, nil
}
