package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DoctorPortal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	ServiceCollection = "service"
	BookingCollection = "bookings"
	UserCollection    = "user"
	DoctorCollection  = "doctor"
	PaymentCollection = "payment"
)

type MongoOptions struct {
	// Transactions runs booking creation and payment confirmation inside a
	// session transaction. Requires a replica set or sharded cluster.
	Transactions bool
	Logger       *zap.Logger
}

type mongoStore struct {
	client   *mongo.Client
	services *mongo.Collection
	bookings *mongo.Collection
	users    *mongo.Collection
	doctors  *mongo.Collection
	payments *mongo.Collection
	txn      bool
	log      *zap.Logger
}

// NewMongo returns a Store backed by the collections of db.
func NewMongo(db *mongo.Database, opts MongoOptions) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	m := &mongoStore{
		client:   db.Client(),
		services: db.Collection(ServiceCollection),
		bookings: db.Collection(BookingCollection),
		users:    db.Collection(UserCollection),
		doctors:  db.Collection(DoctorCollection),
		payments: db.Collection(PaymentCollection),
		txn:      opts.Transactions,
		log:      opts.Logger,
	}
	return &Store{
		Services: mongoServices{m},
		Bookings: mongoBookings{m},
		Users:    mongoUsers{m},
		Doctors:  mongoDoctors{m},
		Payments: mongoPayments{m},
	}
}

// Connect opens a client for uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// withTxn runs fn in a transaction when enabled, otherwise directly.
func (m *mongoStore) withTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.txn {
		return fn(ctx)
	}
	sess, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

func insertResult(r *mongo.InsertOneResult) models.InsertResult {
	return models.InsertResult{Acknowledged: true, InsertedID: r.InsertedID}
}

func updateResult(r *mongo.UpdateResult) models.UpdateResult {
	return models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  r.MatchedCount,
		ModifiedCount: r.ModifiedCount,
		UpsertedCount: r.UpsertedCount,
		UpsertedID:    r.UpsertedID,
	}
}

type mongoServices struct{ *mongoStore }

func (s mongoServices) List(ctx context.Context) ([]models.Service, error) {
	return findAll[models.Service](ctx, s.services, bson.M{})
}

func (s mongoServices) ListNames(ctx context.Context) ([]models.ServiceSummary, error) {
	opts := options.Find().SetProjection(bson.M{"name": 1})
	return findAll[models.ServiceSummary](ctx, s.services, bson.M{}, opts)
}

func (s mongoServices) Insert(ctx context.Context, svc models.Service) (models.InsertResult, error) {
	res, err := s.services.InsertOne(ctx, svc)
	if err != nil {
		return models.InsertResult{}, err
	}
	return insertResult(res), nil
}

func (s mongoServices) Count(ctx context.Context) (int64, error) {
	return s.services.CountDocuments(ctx, bson.M{})
}

type mongoBookings struct{ *mongoStore }

func (b mongoBookings) ListByDate(ctx context.Context, date string) ([]models.Booking, error) {
	return findAll[models.Booking](ctx, b.bookings, bson.M{"date": date})
}

func (b mongoBookings) ListByPatient(ctx context.Context, patient string) ([]models.Booking, error) {
	return findAll[models.Booking](ctx, b.bookings, bson.M{"patient": patient})
}

func (b mongoBookings) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var booking models.Booking
	err = b.bookings.FindOne(ctx, bson.M{"_id": oid}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CreateIfAbsent does not close the race between two concurrent creates of
// the same triple: without a unique index neither transaction writes a
// document the other read, so both can commit.
func (b mongoBookings) CreateIfAbsent(ctx context.Context, booking models.Booking) (bool, models.Booking, error) {
	var (
		created bool
		result  models.Booking
	)
	err := b.withTxn(ctx, func(ctx context.Context) error {
		created = false
		filter := bson.M{
			"treatment": booking.Treatment,
			"date":      booking.Date,
			"patient":   booking.Patient,
		}
		var existing models.Booking
		err := b.bookings.FindOne(ctx, filter).Decode(&existing)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}
		toInsert := booking
		toInsert.ID = primitive.NewObjectID()
		if _, err := b.bookings.InsertOne(ctx, toInsert); err != nil {
			return err
		}
		created = true
		result = toInsert
		return nil
	})
	if err != nil {
		return false, models.Booking{}, err
	}
	return created, result, nil
}

type mongoUsers struct{ *mongoStore }

func (u mongoUsers) List(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, u.users, bson.M{})
}

func (u mongoUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := u.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u mongoUsers) Upsert(ctx context.Context, email string, fields map[string]interface{}) (models.UpdateResult, error) {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	set["email"] = email
	res, err := u.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set}, options.Update().SetUpsert(true))
	if err != nil {
		return models.UpdateResult{}, err
	}
	return updateResult(res), nil
}

func (u mongoUsers) SetRole(ctx context.Context, email, role string) (models.UpdateResult, error) {
	res, err := u.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"role": role}}, options.Update().SetUpsert(true))
	if err != nil {
		return models.UpdateResult{}, err
	}
	return updateResult(res), nil
}

type mongoDoctors struct{ *mongoStore }

func (d mongoDoctors) Insert(ctx context.Context, doctor models.Doctor) (models.InsertResult, error) {
	res, err := d.doctors.InsertOne(ctx, doctor)
	if err != nil {
		return models.InsertResult{}, err
	}
	return insertResult(res), nil
}

func (d mongoDoctors) List(ctx context.Context) ([]models.Doctor, error) {
	return findAll[models.Doctor](ctx, d.doctors, bson.M{})
}

func (d mongoDoctors) DeleteByEmail(ctx context.Context, email string) (models.DeleteResult, error) {
	res, err := d.doctors.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return models.DeleteResult{}, err
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

type mongoPayments struct{ *mongoStore }

func (p mongoPayments) ConfirmBookingPayment(ctx context.Context, bookingID string, payment models.Payment) (models.PaymentConfirmation, error) {
	oid, err := objectID(bookingID)
	if err != nil {
		return models.PaymentConfirmation{}, err
	}
	if payment.Booking == "" {
		payment.Booking = bookingID
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	var out models.PaymentConfirmation
	err = p.withTxn(ctx, func(ctx context.Context) error {
		payment.ID = primitive.NewObjectID()
		ins, err := p.payments.InsertOne(ctx, payment)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		upd, err := p.bookings.UpdateOne(ctx, bson.M{"_id": oid}, paidUpdate(payment.TransactionID))
		if err != nil {
			if !p.txn {
				p.compensate(payment.ID)
			}
			return fmt.Errorf("mark booking paid: %w", err)
		}
		out = models.PaymentConfirmation{
			UpdatedBooking: updateResult(upd),
			PaymentInsert:  insertResult(ins),
		}
		return nil
	})
	if err != nil {
		return models.PaymentConfirmation{}, err
	}
	return out, nil
}

// compensate removes a payment whose booking update failed. The request
// context may already be done, so it uses its own deadline.
func (p mongoPayments) compensate(paymentID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := p.payments.DeleteOne(ctx, bson.M{"_id": paymentID}); err != nil {
		p.log.Error("payment compensation failed; left for reconciliation",
			zap.String("paymentId", paymentID.Hex()), zap.Error(err))
	}
}

func paidUpdate(transactionID string) bson.M {
	return bson.M{"$set": bson.M{"paid": true, "transactionId": transactionID}}
}

func (p mongoPayments) Unreconciled(ctx context.Context, since time.Time) ([]models.Payment, error) {
	payments, err := findAll[models.Payment](ctx, p.payments, bson.M{"createdAt": bson.M{"$gte": since}})
	if err != nil {
		return nil, err
	}
	out := []models.Payment{}
	for _, pay := range payments {
		oid, err := primitive.ObjectIDFromHex(pay.Booking)
		if err != nil {
			continue
		}
		n, err := p.bookings.CountDocuments(ctx, bson.M{"_id": oid, "paid": bson.M{"$ne": true}})
		if err != nil {
			return nil, err
		}
		if n > 0 {
			out = append(out, pay)
		}
	}
	return out, nil
}

func (p mongoPayments) MarkBookingPaid(ctx context.Context, bookingID, transactionID string) (models.UpdateResult, error) {
	oid, err := objectID(bookingID)
	if err != nil {
		return models.UpdateResult{}, err
	}
	res, err := p.bookings.UpdateOne(ctx, bson.M{"_id": oid}, paidUpdate(transactionID))
	if err != nil {
		return models.UpdateResult{}, err
	}
	return updateResult(res), nil
}
