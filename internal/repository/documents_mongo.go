package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDocumentStore maps each logical collection onto a Mongo collection
// with the document id as _id.
type MongoDocumentStore struct {
	db *mongo.Database
}

// ConnectMongo opens a client and pings it.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func NewMongoDocumentStore(db *mongo.Database) *MongoDocumentStore {
	return &MongoDocumentStore{db: db}
}

func (s *MongoDocumentStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return fromBSON(raw), nil
}

func (s *MongoDocumentStore) List(ctx context.Context, collection string) ([]Document, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, fromBSON(raw))
	}
	return docs, nil
}

func (s *MongoDocumentStore) Put(ctx context.Context, collection, id string, fields Fields) error {
	doc := bson.M{"_id": id}
	for k, v := range fields {
		doc[k] = v
	}
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoDocumentStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func fromBSON(raw bson.M) Document {
	doc := Document{Fields: Fields{}}
	for k, v := range raw {
		if k == "_id" {
			doc.ID = fmt.Sprint(v)
			continue
		}
		doc.Fields[k] = v
	}
	return doc
}

var _ DocumentStore = (*MongoDocumentStore)(nil)
