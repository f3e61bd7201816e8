package village

import "fmt"

// Prompt text for each generation kind. The style suffix keeps every
// image in the same storybook look so composites stay coherent with the
// village baseline.

const styleSuffix = "warm storybook illustration, soft watercolor palette, gentle afternoon light, no text"

func avatarPrompt(description string) string {
	return fmt.Sprintf("portrait of a villager: %s, friendly expression, %s", description, styleSuffix)
}

func villagePrompt(name string) string {
	return fmt.Sprintf("a small farming village called %s seen from a low hill, fields, a well, a dirt path, %s", name, styleSuffix)
}

func cropPrompt(crop string) string {
	return fmt.Sprintf("a healthy young %s plant in rich soil, isolated on plain background, %s", crop, styleSuffix)
}

func structurePrompt(structure string) string {
	return fmt.Sprintf("a rustic %s built from timber and stone, isolated on plain background, %s", structure, styleSuffix)
}

func compositePrompt(subject string) string {
	return fmt.Sprintf("the same village with %s added in a natural spot, everything else unchanged, %s", subject, styleSuffix)
}

func wateredPrompt() string {
	return fmt.Sprintf("the same village just after rain, crops glistening and slightly taller, everything else unchanged, %s", styleSuffix)
}
