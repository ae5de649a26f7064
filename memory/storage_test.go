package memory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdsim/memory"
)

var _ = Describe("Storage", func() {
	It("should read and write in single unit", func() {
		storage := memory.NewStorage(4096)
		Expect(storage.Write(0, []byte{1, 2, 3, 4})).To(Succeed())

		res, _ := storage.Read(0, 2)
		Expect(res).To(Equal([]byte{1, 2}))

		res, _ = storage.Read(1, 2)
		Expect(res).To(Equal([]byte{2, 3}))
	})

	It("should read and write across units", func() {
		storage := memory.NewStorage(8192)
		Expect(storage.Write(4094, []byte{1, 2, 3, 4})).To(Succeed())

		res, _ := storage.Read(4094, 4)
		Expect(res).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should read zeros from untouched units", func() {
		storage := memory.NewStorageWithUnitSize(64, 16)

		res, err := storage.Read(10, 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal(make([]byte, 20)))
	})

	It("should return error if accessing over the capacity", func() {
		storage := memory.NewStorage(4096)

		Expect(storage.Write(4095, []byte{1, 2})).
			To(MatchError(memory.ErrOutOfRange))

		_, err := storage.Read(4097, 1)
		Expect(err).To(MatchError(memory.ErrOutOfRange))

		Expect(storage.Write(4095, []byte{1})).To(Succeed())
	})
})
