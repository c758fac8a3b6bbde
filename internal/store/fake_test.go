package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type call struct {
	method string
	filter any
	update any
	upsert bool
}

// fakeCollection records every call and serves canned documents, so the
// stores can be exercised without a server.
type fakeCollection struct {
	calls []call

	findOneDoc any
	findDocs   any
	aggDocs    any

	findOpts *options.FindOptions
	pipeline mongo.Pipeline

	deleted int64
	err     error
}

func copyValue(src, dst any) error {
	t, b, err := bson.MarshalValue(src)
	if err != nil {
		return err
	}
	rv := bson.RawValue{Type: t, Value: b}
	return rv.Unmarshal(dst)
}

func (f *fakeCollection) UpdateOne(_ context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	upsert := false
	for _, o := range opts {
		if o != nil && o.Upsert != nil {
			upsert = *o.Upsert
		}
	}
	f.calls = append(f.calls, call{method: "UpdateOne", filter: filter, update: update, upsert: upsert})
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (f *fakeCollection) InsertOne(_ context.Context, doc any) error {
	f.calls = append(f.calls, call{method: "InsertOne", update: doc})
	return f.err
}

func (f *fakeCollection) DeleteOne(_ context.Context, filter any) (int64, error) {
	f.calls = append(f.calls, call{method: "DeleteOne", filter: filter})
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func (f *fakeCollection) DeleteMany(_ context.Context, filter any) (int64, error) {
	f.calls = append(f.calls, call{method: "DeleteMany", filter: filter})
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func (f *fakeCollection) FindOne(_ context.Context, filter any, out any) error {
	f.calls = append(f.calls, call{method: "FindOne", filter: filter})
	if f.err != nil {
		return f.err
	}
	if f.findOneDoc == nil {
		return mongo.ErrNoDocuments
	}
	return copyValue(f.findOneDoc, out)
}

func (f *fakeCollection) Find(_ context.Context, filter any, opts *options.FindOptions, out any) error {
	f.calls = append(f.calls, call{method: "Find", filter: filter})
	f.findOpts = opts
	if f.err != nil {
		return f.err
	}
	if f.findDocs == nil {
		return nil
	}
	return copyValue(f.findDocs, out)
}

func (f *fakeCollection) Aggregate(_ context.Context, pipeline mongo.Pipeline, out any) error {
	f.calls = append(f.calls, call{method: "Aggregate"})
	f.pipeline = pipeline
	if f.err != nil {
		return f.err
	}
	if f.aggDocs == nil {
		return nil
	}
	return copyValue(f.aggDocs, out)
}
