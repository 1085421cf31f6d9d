package export_test

import (
	"context"

	"github.com/skubi6/kpi/asset"
	"github.com/skubi6/kpi/formpack"
)

// The animal-identification form again: the one fixture whose exported
// bytes are asserted in full across every encoder.
func animalVersion() *formpack.Version {
	externalCharacteristics := formpack.Group{
		Name: "external_characteristics",
		Labels: formpack.LabelMap{
			"English": "External Characteristics",
			"Spanish": "Características externas",
		},
	}

	return &formpack.Version{
		UID:          "vYJyVDCaBRBgVuisYpjAdi",
		Translations: []string{"English", "Spanish"},
		Fields: []*formpack.Field{
			{Name: "start", Type: "start"},
			{Name: "end", Type: "end"},
			{
				Name: "What_kind_of_symmetry_do_you_have",
				Type: formpack.TypeSelectMultiple,
				Labels: formpack.LabelMap{
					"English": "What kind of symmetry do you have?",
					"Spanish": "¿Qué tipo de simetría tiene?",
				},
				Tags:     []string{"hxl:#symmetry"},
				ListName: "symmetry",
				Groups:   []formpack.Group{externalCharacteristics},
			},
			{
				Name: "How_many_segments_does_your_body_have",
				Type: "integer",
				Labels: formpack.LabelMap{
					"English": "How many segments does your body have?",
					"Spanish": "¿Cuántos segmentos tiene tu cuerpo?",
				},
				Tags:   []string{"hxl:#segments"},
				Groups: []formpack.Group{externalCharacteristics},
			},
			{
				Name: "Do_you_have_body_flu_intracellular_space",
				Type: formpack.TypeSelectOne,
				Labels: formpack.LabelMap{
					"English": "Do you have body fluids that occupy intracellular space?",
					"Spanish": "¿Tienes fluidos corporales que ocupan espacio intracelular?",
				},
				Tags:     []string{"hxl:#fluids"},
				ListName: "fluids",
			},
			{
				Name: "Do_you_descend_from_unicellular_organism",
				Type: formpack.TypeSelectOne,
				Labels: formpack.LabelMap{
					"English": "Do you descend from an ancestral unicellular organism?",
					"Spanish": "¿Desciende de un organismo unicelular ancestral?",
				},
				ListName: "yes_no",
			},
		},
		Choices: map[string]formpack.ChoiceList{
			"symmetry": {
				{Name: "spherical", Labels: formpack.LabelMap{"English": "Spherical", "Spanish": "Esférico"}},
				{Name: "radial", Labels: formpack.LabelMap{"English": "Radial", "Spanish": "Radial"}},
				{Name: "bilateral", Labels: formpack.LabelMap{"English": "Bilateral", "Spanish": "Bilateral"}},
			},
			"fluids": {
				{Name: "yes", Labels: formpack.LabelMap{"English": "Yes", "Spanish": "Sí"}},
				{Name: "yes__and_some_", Labels: formpack.LabelMap{
					"English": "Yes, and some extracellular space",
					"Spanish": "Sí, y algún espacio extracelular",
				}},
				{Name: "no___unsure", Labels: formpack.LabelMap{"English": "No / Unsure", "Spanish": "No / Inseguro"}},
			},
			"yes_no": {
				{Name: "yes", Labels: formpack.LabelMap{"English": "Yes", "Spanish": "Sí"}},
				{Name: "no", Labels: formpack.LabelMap{"English": "No", "Spanish": "No"}},
			},
		},
	}
}

func animalPack() *formpack.Pack {
	p, err := formpack.NewPack("Identificación de animales", animalVersion())
	if err != nil {
		panic(err)
	}
	return p
}

func animalSubmissions() []formpack.Submission {
	return []formpack.Submission{
		{
			"start": "2017-10-23T05:40:39.000-04:00",
			"end":   "2017-10-23T05:41:13.000-04:00",
			"external_characteristics/What_kind_of_symmetry_do_you_have":     "spherical radial bilateral",
			"external_characteristics/How_many_segments_does_your_body_have": "6",
			"Do_you_have_body_flu_intracellular_space":                       "yes__and_some_",
			"Do_you_descend_from_unicellular_organism":                       "no",
			"_id":              61,
			"_uuid":            "48583952-1892-4931-8d9c-869e7b49bafb",
			"_submission_time": "2017-10-23T09:41:19",
		},
		{
			"start": "2017-10-23T05:41:14.000-04:00",
			"end":   "2017-10-23T05:41:32.000-04:00",
			"external_characteristics/What_kind_of_symmetry_do_you_have":     "radial",
			"external_characteristics/How_many_segments_does_your_body_have": "3",
			"Do_you_have_body_flu_intracellular_space":                       "yes",
			"Do_you_descend_from_unicellular_organism":                       "no",
			"_id":              62,
			"_uuid":            "317ba7b7-bea4-4a8c-8620-a483c3079c4b",
			"_submission_time": "2017-10-23T09:41:38",
		},
		{
			"start": "2017-10-23T05:41:32.000-04:00",
			"end":   "2017-10-23T05:42:05.000-04:00",
			"external_characteristics/What_kind_of_symmetry_do_you_have":     "bilateral",
			"external_characteristics/How_many_segments_does_your_body_have": "2",
			"Do_you_have_body_flu_intracellular_space":                       "no___unsure",
			"Do_you_descend_from_unicellular_organism":                       "yes",
			"_id":              63,
			"_uuid":            "3f15cdfe-3eab-4678-8352-7806febf158d",
			"_submission_time": "2017-10-23T09:42:11",
		},
	}
}

// animalAsset wires the fixture form into a deployed in-memory asset.
func animalAsset(owner string) *asset.Asset {
	return &asset.Asset{
		UID:        "aX6CUrtnHfZE64CnNdjzuz",
		Name:       "Identificación de animales",
		Owner:      owner,
		Versions:   []*formpack.Version{animalVersion()},
		Deployment: &asset.SliceDeployment{Records: animalSubmissions()},
	}
}

func animalStream() formpack.Stream {
	d := &asset.SliceDeployment{Records: animalSubmissions()}
	return d.Submissions(context.Background())
}
