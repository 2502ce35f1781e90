// Package mongo connects to MongoDB and reads configuration documents.
//
// New and NewWithDatabase retry the initial connection and ping. The
// connection URL is usually not known at process start: it is read from the
// key vault and set on Config before connecting.
//
// Store returns query results as document.Document values. Array results pass
// through the registered post-read transforms, which is where the document
// cipher plugs in:
//
//	store := mongo.NewStore(db,
//		mongo.WithTransform(cipher.Transformation()),
//		mongo.WithSealedFields("broker"),
//	)
//	workspaces, err := store.Find(ctx, "workspaces", bson.D{{Key: "removed", Value: bson.D{{Key: "$ne", Value: true}}}})
//
// Single-document reads are not transformed.
//
// Use IsAuthError to tell rejected credentials apart from an unreachable
// server.
package mongo
