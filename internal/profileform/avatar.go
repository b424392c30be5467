package profileform

import (
	"context"
	"fmt"
)

// ImagePicker is the device photo library.
type ImagePicker interface {
	RequestPermission(ctx context.Context) (granted bool, err error)
	// Pick returns ok=false when the user cancels.
	Pick(ctx context.Context) (uri string, ok bool, err error)
}

// PickAvatar asks for library access and stores the picked reference verbatim.
// Editing stays open while the picker is up. The result is dropped if the
// session left Editing in the meantime.
func (s *Session) PickAvatar(ctx context.Context, picker ImagePicker) (bool, error) {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	if s.picking {
		s.mu.Unlock()
		return false, ErrPickInProgress
	}
	s.picking = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.picking = false
		s.mu.Unlock()
	}()

	granted, err := picker.RequestPermission(ctx)
	if err != nil {
		return false, fmt.Errorf("request photo permission: %w", err)
	}
	if !granted {
		s.logger.Info("photo library access denied", nil)
		s.notify(NoticePermissionDenied)
		return false, ErrPermissionDenied
	}

	uri, ok, err := picker.Pick(ctx)
	if err != nil {
		return false, fmt.Errorf("pick image: %w", err)
	}
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		s.logger.Info("discarding picked image", map[string]interface{}{
			"state": s.state.String(),
		})
		return false, err
	}
	s.values.AvatarURI = &uri
	s.revalidateLocked()
	return true, nil
}
