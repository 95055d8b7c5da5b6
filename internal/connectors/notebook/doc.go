// Package notebook implements the notebook listing sources (Kaggle and
// GitHub). Each run reads one CSV export; every row is a document whose
// reference points back at the row, so a resumed run can fetch it again
// without relisting.
package notebook
