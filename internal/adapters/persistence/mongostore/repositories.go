package mongostore

import (
	"context"

	"campus-rms/internal/adapters/persistence/models"
	"campus-rms/internal/adapters/persistence/repositories"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type userRepository struct {
	coll *mongo.Collection
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.coll.InsertOne(ctx, user)
	return translate(err)
}

func (r *userRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, department string) ([]*models.User, error) {
	filter := bson.M{}
	if department != "" {
		filter["department"] = department
	}
	return findAll[models.User](ctx, r.coll, filter, "createdAt")
}

func (r *userRepository) FirstByDepartmentAndRole(ctx context.Context, department, role string) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	err := r.coll.FindOne(ctx, bson.M{"department": department, "role": role}, opts).Decode(&user)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) Departments(ctx context.Context) ([]string, error) {
	var names []string
	res := r.coll.Distinct(ctx, "department", bson.M{"department": bson.M{"$ne": ""}})
	if err := res.Decode(&names); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"userId": user.UserID}, bson.M{"$set": bson.M{
		"name":       user.Name,
		"email":      user.Email,
		"department": user.Department,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, userID string) error {
	return deleteOne(ctx, r.coll, bson.M{"userId": userID})
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"email": email})
	return count > 0, err
}

type equipmentRepository struct {
	coll *mongo.Collection
}

func (r *equipmentRepository) Create(ctx context.Context, equipment *models.Equipment) error {
	_, err := r.coll.InsertOne(ctx, equipment)
	return translate(err)
}

func (r *equipmentRepository) GetByEquipmentID(ctx context.Context, equipmentID string) (*models.Equipment, error) {
	var equipment models.Equipment
	if err := r.coll.FindOne(ctx, bson.M{"equipmentId": equipmentID}).Decode(&equipment); err != nil {
		return nil, translate(err)
	}
	return &equipment, nil
}

func (r *equipmentRepository) List(ctx context.Context, department, status string) ([]*models.Equipment, error) {
	filter := bson.M{}
	if department != "" {
		filter["department"] = department
	}
	if status != "" {
		filter["status"] = status
	}
	return findAll[models.Equipment](ctx, r.coll, filter, "createdAt")
}

func (r *equipmentRepository) UpdateDetails(ctx context.Context, equipment *models.Equipment) error {
	set := bson.M{
		"name":        equipment.Name,
		"description": equipment.Description,
		"category":    equipment.Category,
		"location":    equipment.Location,
	}
	unset := bson.M{}
	if equipment.PurchaseDate != nil {
		set["purchaseDate"] = *equipment.PurchaseDate
	} else {
		unset["purchaseDate"] = ""
	}
	if equipment.Value != nil {
		set["value"] = *equipment.Value
	} else {
		unset["value"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"equipmentId": equipment.EquipmentID}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

func (r *equipmentRepository) UpdateStatus(ctx context.Context, equipmentID string, from []string, status string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"equipmentId": equipmentID, "status": bson.M{"$in": from}},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return missingOrStale(ctx, r.coll, bson.M{"equipmentId": equipmentID})
}

func (r *equipmentRepository) Delete(ctx context.Context, equipmentID string) error {
	return deleteOne(ctx, r.coll, bson.M{"equipmentId": equipmentID})
}

type requestRepository struct {
	coll *mongo.Collection
}

func (r *requestRepository) Create(ctx context.Context, request *models.Request) error {
	_, err := r.coll.InsertOne(ctx, request)
	return translate(err)
}

func (r *requestRepository) GetByRequestID(ctx context.Context, requestID string) (*models.Request, error) {
	var request models.Request
	if err := r.coll.FindOne(ctx, bson.M{"requestId": requestID}).Decode(&request); err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

func (r *requestRepository) List(ctx context.Context, filter repositories.RequestFilter) ([]*models.Request, error) {
	q := bson.M{}
	if filter.StudentID != "" {
		q["studentId"] = filter.StudentID
	}
	if filter.EquipmentID != "" {
		q["equipmentId"] = filter.EquipmentID
	}
	if len(filter.Statuses) > 0 {
		q["status"] = bson.M{"$in": filter.Statuses}
	}
	if filter.RequestIDs != nil {
		if len(filter.RequestIDs) == 0 {
			return []*models.Request{}, nil
		}
		q["requestId"] = bson.M{"$in": filter.RequestIDs}
	}
	return findAll[models.Request](ctx, r.coll, q, "requestDate")
}

func (r *requestRepository) Transition(ctx context.Context, requestID string, from []string, update repositories.RequestUpdate) error {
	set := bson.M{"status": update.Status}
	if update.ApprovedBy != nil {
		set["approvedBy"] = *update.ApprovedBy
	}
	if update.ApprovalDate != nil {
		set["approvalDate"] = *update.ApprovalDate
	}
	if update.ReturnDate != nil {
		set["returnDate"] = *update.ReturnDate
	}
	if update.Comments != nil {
		set["comments"] = *update.Comments
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"requestId": requestID, "status": bson.M{"$in": from}},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return missingOrStale(ctx, r.coll, bson.M{"requestId": requestID})
}

type eventRepository struct {
	coll *mongo.Collection
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	_, err := r.coll.InsertOne(ctx, event)
	return translate(err)
}

func (r *eventRepository) GetByEventID(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	if err := r.coll.FindOne(ctx, bson.M{"eventId": eventID}).Decode(&event); err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*models.Event, error) {
	return findAll[models.Event](ctx, r.coll, bson.M{}, "createdDate")
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"eventId": event.EventID}, event)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, eventID string) error {
	return deleteOne(ctx, r.coll, bson.M{"eventId": eventID})
}

type eventRequestRepository struct {
	coll *mongo.Collection
}

func (r *eventRequestRepository) Create(ctx context.Context, request *models.EventRequest) error {
	_, err := r.coll.InsertOne(ctx, request)
	return translate(err)
}

func (r *eventRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*models.EventRequest, error) {
	var request models.EventRequest
	if err := r.coll.FindOne(ctx, bson.M{"requestId": requestID}).Decode(&request); err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

func (r *eventRequestRepository) List(ctx context.Context, filter repositories.EventRequestFilter) ([]*models.EventRequest, error) {
	q := bson.M{}
	if filter.EventID != "" {
		q["eventId"] = filter.EventID
	}
	if filter.StudentID != "" {
		q["studentId"] = filter.StudentID
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	return findAll[models.EventRequest](ctx, r.coll, q, "requestDate")
}

func (r *eventRequestRepository) Transition(ctx context.Context, requestID, from, status, comments string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"requestId": requestID, "status": from},
		bson.M{"$set": bson.M{"status": status, "comments": comments}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return missingOrStale(ctx, r.coll, bson.M{"requestId": requestID})
}

func deleteOne(ctx context.Context, coll *mongo.Collection, filter bson.M) error {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

// missingOrStale tells apart a conditional update that lost a race from one
// that targeted a document which does not exist
func missingOrStale(ctx context.Context, coll *mongo.Collection, filter bson.M) error {
	count, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return err
	}
	if count == 0 {
		return repositories.ErrRecordNotFound
	}
	return repositories.ErrStaleWrite
}
