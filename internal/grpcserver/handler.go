package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/patric-chuzhbe/usuaris/internal/logger"
	"github.com/patric-chuzhbe/usuaris/internal/models"
	"github.com/patric-chuzhbe/usuaris/internal/service"
)

const (
	msgNoUsersMatched = "Cap usuari trobat"
	msgUserNotFound   = "Usuari no trobat"
	msgInternalError  = "Hi ha hagut un error!"

	usersField = "usuaris"
)

type userStore interface {
	Filter(ctx context.Context, filter models.Filter) ([]models.User, error)

	FindByID(ctx context.Context, id int64) (models.User, error)

	Create(ctx context.Context, payload models.UserPayload) (models.User, error)

	Update(ctx context.Context, id int64, payload models.UserPayload) (models.User, error)

	Delete(ctx context.Context, id int64) error
}

// UsuarisHandler implements UsuarisServiceServer on top of the record store.
type UsuarisHandler struct {
	store    userStore
	attrName string
}

func NewUsuarisHandler(store userStore, attrName string) *UsuarisHandler {
	if attrName == "" {
		attrName = models.DefaultAttributeName
	}
	return &UsuarisHandler{
		store:    store,
		attrName: attrName,
	}
}

func (h *UsuarisHandler) toStatus(method string, err error) error {
	switch {
	case errors.Is(err, service.ErrNoUsersMatched):
		return status.Error(codes.NotFound, msgNoUsersMatched)
	case errors.Is(err, service.ErrUserNotFound):
		return status.Error(codes.NotFound, msgUserNotFound)
	default:
		logger.Log.Errorw("error while serving gRPC request", "method", method, "err", err)
		return status.Error(codes.Internal, msgInternalError)
	}
}

func (h *UsuarisHandler) userToStruct(usr models.User) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"id": usr.ID,
	}
	if usr.Nom != nil {
		fields["nom"] = *usr.Nom
	}
	if usr.Attr != nil {
		fields[h.attrName] = *usr.Attr
	}

	result, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("error while `structpb.NewStruct()` calling: %w", err)
	}

	return result, nil
}

func (h *UsuarisHandler) payloadFromStruct(in *structpb.Struct) models.UserPayload {
	var payload models.UserPayload
	fields := in.GetFields()

	if nom, ok := fields["nom"].GetKind().(*structpb.Value_StringValue); ok {
		value := nom.StringValue
		payload.Nom = &value
	}
	if attr, ok := fields[h.attrName]; ok {
		payload.Attr = models.CoerceAttr(attr.AsInterface())
	}

	return payload
}

// criterion renders a filter value the way a query string would carry it.
func criterion(value *structpb.Value) *string {
	var result string
	switch kind := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		result = kind.StringValue
	case *structpb.Value_NumberValue:
		result = strconv.FormatInt(int64(kind.NumberValue), 10)
	default:
		return nil
	}
	return &result
}

func (h *UsuarisHandler) ListUsers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()
	filter := models.Filter{
		Nom:  criterion(fields["nom"]),
		Attr: criterion(fields[h.attrName]),
	}

	users, err := h.store.Filter(ctx, filter)
	if err != nil {
		return nil, h.toStatus(MethodListUsers, err)
	}

	values := make([]*structpb.Value, 0, len(users))
	for _, usr := range users {
		item, err := h.userToStruct(usr)
		if err != nil {
			return nil, h.toStatus(MethodListUsers, err)
		}
		values = append(values, structpb.NewStructValue(item))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			usersField: structpb.NewListValue(&structpb.ListValue{Values: values}),
		},
	}, nil
}

func (h *UsuarisHandler) GetUser(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error) {
	usr, err := h.store.FindByID(ctx, in.GetValue())
	if err != nil {
		return nil, h.toStatus(MethodGetUser, err)
	}

	result, err := h.userToStruct(usr)
	if err != nil {
		return nil, h.toStatus(MethodGetUser, err)
	}
	return result, nil
}

func (h *UsuarisHandler) CreateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	usr, err := h.store.Create(ctx, h.payloadFromStruct(in))
	if err != nil {
		return nil, h.toStatus(MethodCreateUser, err)
	}

	result, err := h.userToStruct(usr)
	if err != nil {
		return nil, h.toStatus(MethodCreateUser, err)
	}
	return result, nil
}

// UpdateUser replaces nom and the attribute of the record named by the
// "id" field. A missing or unparseable id is reported as NotFound.
func (h *UsuarisHandler) UpdateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	idCriterion := criterion(in.GetFields()["id"])
	if idCriterion == nil {
		return nil, status.Error(codes.NotFound, msgUserNotFound)
	}
	id, ok := models.ParseLeadingInt(*idCriterion)
	if !ok {
		return nil, status.Error(codes.NotFound, msgUserNotFound)
	}

	usr, err := h.store.Update(ctx, id, h.payloadFromStruct(in))
	if err != nil {
		return nil, h.toStatus(MethodUpdateUser, err)
	}

	result, err := h.userToStruct(usr)
	if err != nil {
		return nil, h.toStatus(MethodUpdateUser, err)
	}
	return result, nil
}

func (h *UsuarisHandler) DeleteUser(ctx context.Context, in *wrapperspb.Int64Value) (*wrapperspb.StringValue, error) {
	if err := h.store.Delete(ctx, in.GetValue()); err != nil {
		return nil, h.toStatus(MethodDeleteUser, err)
	}

	return wrapperspb.String(fmt.Sprintf("Usuari %d esborrat", in.GetValue())), nil
}
