package dto

// Requests the chat adapters hand to the village service. Validation
// tags are enforced by the service before anything is enqueued.

type PlantRequest struct {
	OwnerID   string `json:"owner_id" validate:"required"`
	VillageID string `json:"village_id" validate:"required"`
	Crop      string `json:"crop" validate:"required,min=2,max=64"`
}

type BuildRequest struct {
	OwnerID   string `json:"owner_id" validate:"required"`
	VillageID string `json:"village_id" validate:"required"`
	Structure string `json:"structure" validate:"required,min=2,max=64"`
}

type WaterRequest struct {
	OwnerID   string `json:"owner_id" validate:"required"`
	VillageID string `json:"village_id" validate:"required"`
}

type NewVillageRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
	Name    string `json:"name" validate:"required,min=2,max=64"`
}

type AvatarRequest struct {
	OwnerID     string `json:"owner_id" validate:"required"`
	Description string `json:"description" validate:"required,min=2,max=256"`
}
