package utils

import "fmt"

const avatarSize = 128

// Avatar returns a deterministic placeholder avatar URL for users and
// authors without an uploaded profile image.
func Avatar(seed string) string {
	return fmt.Sprintf("https://avatars.dicebear.com/api/initials/%v.svg?size=%v", seed, avatarSize)
}

// AvatarOr returns the stored image when present, otherwise a placeholder.
func AvatarOr(image, seed string) string {
	if image != "" {
		return image
	}
	return Avatar(seed)
}
