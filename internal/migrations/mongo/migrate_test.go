package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

// The open-usage index must stay a unique partial index whose filter matches
// the explicit null stored in open records. Partial filter expressions do not
// support $eq: null, so the filter has to select on the null BSON type.
func TestElevatorUsagesOpenRecordIndex(t *testing.T) {
	idx := ElevatorUsagesIndexes[0]

	if idx.Options == nil || idx.Options.Unique == nil || !*idx.Options.Unique {
		t.Fatal("open-usage index must be unique")
	}

	filter, ok := idx.Options.PartialFilterExpression.(bson.M)
	if !ok {
		t.Fatalf("partial filter expression = %T, want bson.M", idx.Options.PartialFilterExpression)
	}

	endFilter, ok := filter["end"].(bson.M)
	if !ok {
		t.Fatalf("filter must select on end, got %v", filter)
	}
	if _, hasEq := endFilter["$eq"]; hasEq {
		t.Error("filter must not use $eq: null, partial indexes reject it")
	}
	if bsonType, ok := endFilter["$type"].(int); !ok || bsonType != 10 {
		t.Errorf("filter end = %v, want $type 10 (null)", endFilter)
	}
}

func TestSlotLocksExpireOnTheirOwn(t *testing.T) {
	idx := SlotLocksIndexes[0]

	if idx.Options == nil || idx.Options.ExpireAfterSeconds == nil {
		t.Fatal("slot lock index must carry a TTL")
	}
	if *idx.Options.ExpireAfterSeconds != 0 {
		t.Errorf("expire after seconds = %d, want 0 so expires_at is authoritative", *idx.Options.ExpireAfterSeconds)
	}
}
