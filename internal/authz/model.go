package authz

import (
	"context"
	"fmt"

	openfga "github.com/openfga/go-sdk"
	fga "github.com/openfga/go-sdk/client"
)

// Tuple is one relationship fact written to the store.
type Tuple struct {
	User     string // e.g. "user:alice" or "user:*"
	Relation string // e.g. "owner", "viewer"
	Object   string // e.g. "resume:a1b2c3"
}

// TupleWriter records relationship tuples, typically at document upload time.
type TupleWriter interface {
	WriteTuples(ctx context.Context, tuples ...Tuple) error
}

var _ TupleWriter = (*OpenFGA)(nil)

func (o *OpenFGA) WriteTuples(ctx context.Context, tuples ...Tuple) error {
	writes := make([]fga.ClientTupleKey, len(tuples))
	for i, t := range tuples {
		writes[i] = fga.ClientTupleKey{User: t.User, Relation: t.Relation, Object: t.Object}
	}
	_, err := o.c.Write(ctx).Body(fga.ClientWriteRequest{Writes: writes}).Execute()
	if err != nil {
		return fmt.Errorf("fga_write_tuples: %w", err)
	}
	return nil
}

// PublicTemplateObject is viewable by every user via a wildcard tuple.
const PublicTemplateObject = "resume:public-template"

// BootstrapModel writes the resume authorization model and the wildcard tuple
// that makes the public template readable by everyone. Returns the new model
// id so it can be pinned via FGA_MODEL_ID.
func (o *OpenFGA) BootstrapModel(ctx context.Context) (string, error) {
	this := map[string]interface{}{}
	wildcard := map[string]interface{}{}

	model := fga.ClientWriteAuthorizationModelRequest{
		SchemaVersion: "1.1",
		TypeDefinitions: []openfga.TypeDefinition{
			{Type: "user"},
			{
				Type: "resume",
				Relations: &map[string]openfga.Userset{
					"owner":  {This: &this},
					"viewer": {This: &this},
				},
				Metadata: &openfga.Metadata{
					Relations: &map[string]openfga.RelationMetadata{
						"owner": {
							DirectlyRelatedUserTypes: &[]openfga.RelationReference{
								{Type: "user"},
							},
						},
						"viewer": {
							DirectlyRelatedUserTypes: &[]openfga.RelationReference{
								{Type: "user"},
								{Type: "user", Wildcard: &wildcard},
							},
						},
					},
				},
			},
		},
	}

	resp, err := o.c.WriteAuthorizationModel(ctx).Body(model).Execute()
	if err != nil {
		return "", fmt.Errorf("fga_write_model: %w", err)
	}

	if err := o.WriteTuples(ctx, Tuple{
		User:     "user:*",
		Relation: "viewer",
		Object:   PublicTemplateObject,
	}); err != nil {
		return "", err
	}

	return resp.GetAuthorizationModelId(), nil
}
