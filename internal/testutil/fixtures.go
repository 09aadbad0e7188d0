package testutil

import "testing"

// SampleManifest is a minimal two-type manifest used across tests.
const SampleManifest = `name: sample
bundleType: bundle-type.yaml
schemas:
  Feature: schemas/feature.yaml
  Requirement: schemas/requirement.yaml
`

// SampleBundleType declares Feature and Requirement plus the
// realizes relation between them.
const SampleBundleType = `name: sdd
entities:
  Feature:
    directory: features
  Requirement:
    directory: requirements
relations:
  - title: realizes
    fromEntity: Requirement
    fromField: realizesFeatureIds
    toEntity: Feature
    multiplicity: many
`

// SampleFeatureSchema declares the Feature fields.
const SampleFeatureSchema = `type: Feature
fields:
  id:
    type: string
    required: true
  title:
    type: string
    required: true
  status:
    type: enum
    values: [draft, approved, done]
`

// SampleRequirementSchema declares the Requirement fields, including
// the ref[] field that realizes features.
const SampleRequirementSchema = `type: Requirement
fields:
  id:
    type: string
    required: true
  title:
    type: string
    required: true
  priority:
    type: number
    min: 1
    max: 5
  realizesFeatureIds:
    type: ref[]
    targets: [Feature]
  metadata:
    type: object
    fields:
      owner:
        type: string
`

// NewSampleBundle builds a bundle with one Feature (FEAT-1) and one
// Requirement (REQ-1) that references it.
func NewSampleBundle(t *testing.T) *TestBundle {
	t.Helper()
	return NewTestBundle(t).
		WithManifest(SampleManifest).
		WithFile("bundle-type.yaml", SampleBundleType).
		WithFile("schemas/feature.yaml", SampleFeatureSchema).
		WithFile("schemas/requirement.yaml", SampleRequirementSchema).
		WithFile("features/feat-1.yaml", "id: FEAT-1\ntitle: Login\nstatus: draft\n").
		WithFile("requirements/req-1.yaml", "id: REQ-1\ntitle: Password login\nrealizesFeatureIds:\n  - FEAT-1\n").
		Build()
}
