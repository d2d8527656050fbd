package session

// PutRaw stores blob under id without encoding, for corrupt-entry tests.
func (ms *MemoryStore) PutRaw(id string, blob []byte) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.entries[id] = blob
}
