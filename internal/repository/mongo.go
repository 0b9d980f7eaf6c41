package repository

import (
	"context"
	"errors"
	"time"

	"devhub/internal/database"
	"devhub/internal/models"
	"devhub/internal/observability"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// NewMongoStore wires the MongoDB repositories over db.
func NewMongoStore(db *mongo.Database) *Store {
	users := NewMongoUserRepository(db)
	return &Store{
		Users:    users,
		Profiles: NewMongoProfileRepository(db, users),
		Posts:    NewMongoPostRepository(db),
		Ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
	}
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository returns a UserRepository backed by the users collection.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(database.UsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, span := observability.StartStoreSpan(ctx, driverMongo, "create", "users")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery(driverMongo, "create", "users")()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Date.IsZero() {
		user.Date = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	defer observability.TrackQuery(driverMongo, "get", "users")()

	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, models.NewNotFoundError("User not found")
	}
	user, err := r.findOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := r.findOne(ctx, bson.M{"email": email})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

func (r *mongoUserRepository) ListByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	defer observability.TrackQuery(driverMongo, "list", "users")()

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := cur.All(ctx, &users); err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return models.NewNotFoundError("User not found")
	}
	defer observability.TrackQuery(driverMongo, "delete", "users")()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

type mongoProfileRepository struct {
	coll  *mongo.Collection
	users UserRepository
}

// NewMongoProfileRepository returns a ProfileRepository backed by the profiles collection.
func NewMongoProfileRepository(db *mongo.Database, users UserRepository) ProfileRepository {
	return &mongoProfileRepository{coll: db.Collection(database.ProfilesCollection), users: users}
}

func (r *mongoProfileRepository) load(ctx context.Context, userID string) (*models.Profile, error) {
	if !validID(userID) {
		return nil, models.NewNotFoundError("Profile not found")
	}
	var profile models.Profile
	if err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Profile not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *mongoProfileRepository) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	defer observability.TrackQuery(driverMongo, "get", "profiles")()

	profile, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := attachUserRefs(ctx, r.users, []*models.Profile{profile}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *mongoProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	defer observability.TrackQuery(driverMongo, "list", "profiles")()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	profiles := []models.Profile{}
	if err := cur.All(ctx, &profiles); err != nil {
		return nil, models.NewInternalError(err)
	}
	refs := make([]*models.Profile, len(profiles))
	for i := range profiles {
		refs[i] = &profiles[i]
	}
	if err := attachUserRefs(ctx, r.users, refs); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *mongoProfileRepository) Upsert(ctx context.Context, userID string, fields models.ProfileFields) (_ *models.Profile, err error) {
	ctx, span := observability.StartStoreSpan(ctx, driverMongo, "upsert", "profiles")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery(driverMongo, "upsert", "profiles")()

	set := bson.M{}
	for col, v := range fields.Values() {
		set[col] = v
	}
	onInsert := bson.M{
		"_id":        uuid.NewString(),
		"date":       time.Now().UTC(),
		"experience": []models.Experience{},
		"education":  []models.Education{},
	}
	if _, ok := set["skills"]; !ok {
		onInsert["skills"] = []string{}
	}
	update := bson.M{
		"$setOnInsert": onInsert,
		"$inc":         bson.M{"version": 1},
	}
	if len(set) > 0 {
		update["$set"] = set
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var profile models.Profile
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, opts).Decode(&profile)
	if mongo.IsDuplicateKeyError(err) {
		// Two concurrent upserts both tried to insert; the loser now matches
		// the winner's document and updates it.
		err = r.coll.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, opts).Decode(&profile)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := attachUserRefs(ctx, r.users, []*models.Profile{&profile}); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *mongoProfileRepository) Update(ctx context.Context, userID string, mutate ProfileMutation) (_ *models.Profile, err error) {
	ctx, span := observability.StartStoreSpan(ctx, driverMongo, "update", "profiles")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery(driverMongo, "update", "profiles")()

	profile, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	loaded := profile.Version
	if err := mutate(profile); err != nil {
		return nil, err
	}
	profile.Version = loaded + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": profile.ID, "version": loaded}, profile)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		observability.StaleWrites.WithLabelValues("profiles").Inc()
		return nil, models.NewStaleWriteError("profiles")
	}
	if err := attachUserRefs(ctx, r.users, []*models.Profile{profile}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *mongoProfileRepository) DeleteByUser(ctx context.Context, userID string) error {
	if !validID(userID) {
		return nil
	}
	defer observability.TrackQuery(driverMongo, "delete", "profiles")()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"user": userID}); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

type mongoPostRepository struct {
	coll *mongo.Collection
}

// NewMongoPostRepository returns a PostRepository backed by the posts collection.
func NewMongoPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{coll: db.Collection(database.PostsCollection)}
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, span := observability.StartStoreSpan(ctx, driverMongo, "create", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery(driverMongo, "create", "posts")()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Date.IsZero() {
		post.Date = time.Now().UTC()
	}
	post.Version = 1
	post.Normalize()

	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mongoPostRepository) List(ctx context.Context) ([]models.Post, error) {
	defer observability.TrackQuery(driverMongo, "list", "posts")()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

func (r *mongoPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if !validID(id) {
		return nil, models.NewNotFoundError("Post not found")
	}
	defer observability.TrackQuery(driverMongo, "get", "posts")()

	var post models.Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Post not found")
		}
		return nil, models.NewInternalError(err)
	}
	post.Normalize()
	return &post, nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return models.NewNotFoundError("Post not found")
	}
	defer observability.TrackQuery(driverMongo, "delete", "posts")()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Post not found")
	}
	return nil
}

func (r *mongoPostRepository) Update(ctx context.Context, id string, mutate PostMutation) (_ *models.Post, err error) {
	ctx, span := observability.StartStoreSpan(ctx, driverMongo, "update", "posts")
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery(driverMongo, "update", "posts")()

	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	loaded := post.Version
	if err := mutate(post); err != nil {
		return nil, err
	}
	post.Version = loaded + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": post.ID, "version": loaded}, post)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		observability.StaleWrites.WithLabelValues("posts").Inc()
		return nil, models.NewStaleWriteError("posts")
	}
	post.Normalize()
	return post, nil
}
