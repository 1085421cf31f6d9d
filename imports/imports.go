// Package imports implements the import task body. Imports are peripheral
// here: the supported path accepts a base64-encoded survey document and
// creates an asset from it. Loading from remote URLs and importing into an
// existing destination are not supported.
package imports

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/skubi6/kpi/asset"
	"github.com/skubi6/kpi/errors"
	"github.com/skubi6/kpi/formpack"
	"github.com/skubi6/kpi/task"
)

// surveyDocument is the decoded shape of a base64Encoded upload.
type surveyDocument struct {
	Name   string `json:"name"`
	Survey []struct {
		Name     string            `json:"name"`
		Type     string            `json:"type"`
		Label    map[string]string `json:"label"`
		Tags     []string          `json:"tags"`
		ListName string            `json:"list_name"`
	} `json:"survey"`
	Choices map[string][]struct {
		Name  string            `json:"name"`
		Label map[string]string `json:"label"`
	} `json:"choices"`
	Translations []string `json:"translations"`
}

// Job is the import task body.
type Job struct {
	assets asset.Creator
	log    *zap.SugaredLogger
}

// NewJob creates the import body.
func NewJob(assets asset.Creator, log *zap.SugaredLogger) *Job {
	return &Job{assets: assets, log: log}
}

// Kind implements task.Body.
func (j *Job) Kind() task.Kind {
	return task.KindImport
}

// Execute implements task.Body.
func (j *Job) Execute(ctx context.Context, t *task.Task, msgs task.Messages) error {
	if t.DataString("destination") != "" {
		return errors.New("importing into an existing destination is not supported")
	}
	if t.DataString("url") != "" || t.DataString("single_xls_url") != "" {
		return errors.New("importing from a URL is not supported")
	}

	encoded := t.DataString("base64Encoded")
	if encoded == "" {
		return errors.New("import data must contain `base64Encoded`")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return errors.Wrap(err, "decoding uploaded survey")
	}

	var doc surveyDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errors.Wrap(err, "parsing uploaded survey")
	}
	if len(doc.Survey) == 0 {
		return errors.New("upload must contain a `survey` sheet")
	}

	name := doc.Name
	if name == "" {
		name = t.DataString("filename")
	}

	created, err := j.assets.Create(t.Owner, name, versionFromDocument(&doc))
	if err != nil {
		return errors.Wrap(err, "creating asset")
	}

	j.log.Infow("import created asset", "task_uid", t.UID, "asset_uid", created.UID)
	appendMessage(msgs, "created", map[string]any{
		"uid":             created.UID,
		"kind":            "asset",
		"owner__username": t.Owner,
	})
	return nil
}

// versionFromDocument converts a decoded upload into a deployable schema
// version.
func versionFromDocument(doc *surveyDocument) *formpack.Version {
	v := &formpack.Version{
		UID:          "v1",
		Translations: doc.Translations,
		Choices:      make(map[string]formpack.ChoiceList),
	}
	for _, row := range doc.Survey {
		v.Fields = append(v.Fields, &formpack.Field{
			Name:     row.Name,
			Type:     row.Type,
			Labels:   formpack.LabelMap(row.Label),
			Tags:     row.Tags,
			ListName: row.ListName,
		})
	}
	for listName, rows := range doc.Choices {
		list := make(formpack.ChoiceList, 0, len(rows))
		for _, row := range rows {
			list = append(list, formpack.Choice{
				Name:   row.Name,
				Labels: formpack.LabelMap(row.Label),
			})
		}
		v.Choices[listName] = list
	}
	return v
}

// appendMessage appends entry to the named list in msgs, creating it on
// first use.
func appendMessage(msgs task.Messages, key string, entry map[string]any) {
	list, _ := msgs[key].([]any)
	msgs[key] = append(list, entry)
}
